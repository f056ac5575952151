package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
)

func actorWithRole(id string, role models.PlayerRole) *models.Player {
	return &models.Player{ID: id, TournamentID: "t1", Name: "Actor", Role: role}
}

func actorRepo(actor *models.Player) *fakePlayerRepo {
	return &fakePlayerRepo{
		GetActorFunc: func(ctx context.Context, tournamentID, authID string) (*models.Player, error) {
			return actor, nil
		},
	}
}

func TestCreateGuest(t *testing.T) {
	tests := []struct {
		name     string
		actor    *models.Player
		input    CreatePlayerInput
		wantErr  error
		wantRole models.PlayerRole
	}{
		{
			name:    "plain member cannot create guests",
			actor:   actorWithRole("p1", models.RoleUser),
			input:   CreatePlayerInput{Name: "Guest"},
			wantErr: ErrEditorRequired,
		},
		{
			name:    "name is required",
			actor:   actorWithRole("p1", models.RoleAdmin),
			input:   CreatePlayerInput{},
			wantErr: ErrNameRequired,
		},
		{
			name:    "ability out of range",
			actor:   actorWithRole("p1", models.RoleAdmin),
			input:   CreatePlayerInput{Name: "Guest", Ability: intPtr(11)},
			wantErr: ErrInvalidAbility,
		},
		{
			name:    "admin cannot create another admin",
			actor:   actorWithRole("p1", models.RoleAdmin),
			input:   CreatePlayerInput{Name: "Guest", Role: models.RoleAdmin},
			wantErr: ErrOwnerRequired,
		},
		{
			name:    "owner role is never assignable at creation",
			actor:   actorWithRole("p1", models.RoleOwner),
			input:   CreatePlayerInput{Name: "Guest", Role: models.RoleOwner},
			wantErr: ErrInvalidRole,
		},
		{
			name:     "owner creates an admin guest",
			actor:    actorWithRole("p1", models.RoleOwner),
			input:    CreatePlayerInput{Name: "Guest", Role: models.RoleAdmin},
			wantRole: models.RoleAdmin,
		},
		{
			name:     "role defaults to USER",
			actor:    actorWithRole("p1", models.RoleAdmin),
			input:    CreatePlayerInput{Name: "Guest"},
			wantRole: models.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			playerRepo := actorRepo(tt.actor)
			playerRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
				player.ID = "new-player"
				return nil
			}
			clock := clockwork.NewFakeClock()

			service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clock)
			player, code, err := service.CreateGuest(context.Background(), "auth0|u1", "t1", tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantRole, player.Role)
			assert.Len(t, code, 8)
			assert.NotNil(t, player.ClaimCodeHash)
			assert.Equal(t, hashCode(code), *player.ClaimCodeHash)
			assert.Equal(t, clock.Now().Add(codeTTL), *player.ClaimCodeExpiresAt)
			assert.False(t, player.IsLinked())
		})
	}
}

func TestCreateFromUser(t *testing.T) {
	user := &models.User{
		ID:                "u2",
		AuthID:            "auth0|u2",
		Email:             "leo@example.com",
		Name:              "Leo",
		Nickname:          strPtr("pulga"),
		ImageURL:          strPtr("https://cdn.test/leo.png"),
		FavoriteTeamSlug:  strPtr("newells"),
		DisplayPreference: models.DisplayPreferenceFavoriteTeam,
	}

	newService := func(actor *models.Player) (PlayerService, *fakePlayerRepo) {
		playerRepo := actorRepo(actor)
		playerRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
			player.ID = "new-player"
			return nil
		}
		userRepo := &fakeUserRepo{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				if id != user.ID {
					return nil, repositories.ErrUserNotFound
				}
				return user, nil
			},
		}
		return NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clockwork.NewFakeClock()), playerRepo
	}

	t.Run("plain member cannot add players", func(t *testing.T) {
		service, _ := newService(actorWithRole("p1", models.RoleUser))
		_, err := service.CreateFromUser(context.Background(), "auth0|p1", "t1", CreateFromUserInput{UserID: "u2"})

		assert.ErrorIs(t, err, ErrEditorRequired)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, _ := newService(actorWithRole("p1", models.RoleAdmin))
		_, err := service.CreateFromUser(context.Background(), "auth0|p1", "t1", CreateFromUserInput{UserID: "nobody"})

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("admin cannot grant the ADMIN role", func(t *testing.T) {
		service, _ := newService(actorWithRole("p1", models.RoleAdmin))
		_, err := service.CreateFromUser(context.Background(), "auth0|p1", "t1", CreateFromUserInput{
			UserID: "u2",
			Role:   models.RoleAdmin,
		})

		assert.ErrorIs(t, err, ErrOwnerRequired)
	})

	t.Run("blank fields are seeded from the user profile", func(t *testing.T) {
		service, _ := newService(actorWithRole("p1", models.RoleAdmin))
		player, err := service.CreateFromUser(context.Background(), "auth0|p1", "t1", CreateFromUserInput{UserID: "u2"})

		assert.NoError(t, err)
		assert.Equal(t, "u2", *player.UserID)
		assert.Equal(t, "Leo", player.Name)
		assert.Equal(t, "pulga", *player.Nickname)
		assert.Equal(t, "https://cdn.test/leo.png", *player.ImageURL)
		assert.Equal(t, "newells", *player.FavoriteTeamSlug)
		assert.Equal(t, models.DisplayPreferenceFavoriteTeam, player.DisplayPreference)
		assert.Equal(t, models.RoleUser, player.Role)
		assert.True(t, player.IsLinked())
		assert.Nil(t, player.ClaimCodeHash)
	})

	t.Run("explicit fields win over the profile", func(t *testing.T) {
		service, _ := newService(actorWithRole("p1", models.RoleAdmin))
		player, err := service.CreateFromUser(context.Background(), "auth0|p1", "t1", CreateFromUserInput{
			UserID:   "u2",
			Name:     strPtr("Leopoldo"),
			Nickname: strPtr("diez"),
		})

		assert.NoError(t, err)
		assert.Equal(t, "Leopoldo", player.Name)
		assert.Equal(t, "diez", *player.Nickname)
	})

	t.Run("user already plays in the tournament", func(t *testing.T) {
		service, playerRepo := newService(actorWithRole("p1", models.RoleAdmin))
		playerRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
			return repositories.ErrPlayerUserConflict
		}

		_, err := service.CreateFromUser(context.Background(), "auth0|p1", "t1", CreateFromUserInput{UserID: "u2"})

		assert.ErrorIs(t, err, ErrUserAlreadyInTournament)
	})
}

func TestListByTournamentVisibility(t *testing.T) {
	roster := []*models.Player{
		{ID: "p1", TournamentID: "t1", Name: "One", Role: models.RoleOwner},
		{ID: "p2", TournamentID: "t1", Name: "Two", Role: models.RoleUser},
		{ID: "p3", TournamentID: "t1", Name: "Three", Role: models.RoleUser},
	}

	t.Run("plain member sees only their own card", func(t *testing.T) {
		listCalled := false
		playerRepo := actorRepo(actorWithRole("p2", models.RoleUser))
		playerRepo.ListByTournamentFunc = func(ctx context.Context, tournamentID string) ([]*models.Player, error) {
			listCalled = true
			return roster, nil
		}

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		players, err := service.ListByTournament(context.Background(), "auth0|p2", "t1")

		assert.NoError(t, err)
		assert.Len(t, players, 1)
		assert.Equal(t, "p2", players[0].ID)
		assert.False(t, listCalled, "the full roster must not be fetched for plain members")
	})

	t.Run("admin sees the full roster", func(t *testing.T) {
		playerRepo := actorRepo(actorWithRole("p1", models.RoleAdmin))
		playerRepo.ListByTournamentFunc = func(ctx context.Context, tournamentID string) ([]*models.Player, error) {
			return roster, nil
		}

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		players, err := service.ListByTournament(context.Background(), "auth0|p1", "t1")

		assert.NoError(t, err)
		assert.Len(t, players, 3)
	})
}

func TestUpdateRoleOwnershipTransfer(t *testing.T) {
	owner := actorWithRole("owner", models.RoleOwner)
	target := &models.Player{ID: "target", TournamentID: "t1", Name: "Target", Role: models.RoleUser}

	var roleChanges []struct {
		playerID string
		role     models.PlayerRole
	}
	playerRepo := actorRepo(owner)
	playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
		return target, nil
	}
	playerRepo.UpdateRoleFunc = func(ctx context.Context, exec repositories.SQLExecutor, playerID string, role models.PlayerRole) error {
		roleChanges = append(roleChanges, struct {
			playerID string
			role     models.PlayerRole
		}{playerID, role})
		return nil
	}
	tx := &fakeTxManager{}

	service := NewPlayerService(playerRepo, &fakeUserRepo{}, tx, clockwork.NewFakeClock())
	err := service.UpdateRole(context.Background(), "auth0|owner", "t1", "target", models.RoleOwner)

	assert.NoError(t, err)
	assert.Equal(t, 1, tx.runs, "promotion and demotion must share one transaction")
	assert.Len(t, roleChanges, 2)
	assert.Equal(t, "target", roleChanges[0].playerID)
	assert.Equal(t, models.RoleOwner, roleChanges[0].role)
	assert.Equal(t, "owner", roleChanges[1].playerID)
	assert.Equal(t, models.RoleUser, roleChanges[1].role)
}

func TestUpdateRoleRules(t *testing.T) {
	owner := actorWithRole("owner", models.RoleOwner)

	tests := []struct {
		name     string
		actor    *models.Player
		targetID string
		role     models.PlayerRole
		wantErr  error
	}{
		{
			name:     "admin cannot change roles",
			actor:    actorWithRole("admin", models.RoleAdmin),
			targetID: "target",
			role:     models.RoleAdmin,
			wantErr:  ErrOwnerRequired,
		},
		{
			name:     "invalid role value",
			actor:    owner,
			targetID: "target",
			role:     models.PlayerRole("SUPERUSER"),
			wantErr:  ErrInvalidRole,
		},
		{
			name:     "owner cannot change own role",
			actor:    owner,
			targetID: "owner",
			role:     models.RoleUser,
			wantErr:  ErrForbiddenOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			playerRepo := actorRepo(tt.actor)
			playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
				return &models.Player{ID: playerID, TournamentID: tournamentID, Role: models.RoleUser}, nil
			}

			service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
			err := service.UpdateRole(context.Background(), "auth0|actor", "t1", tt.targetID, tt.role)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeletePlayer(t *testing.T) {
	owner := actorWithRole("owner", models.RoleOwner)

	t.Run("owner target is protected", func(t *testing.T) {
		playerRepo := actorRepo(owner)
		playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
			return &models.Player{ID: playerID, TournamentID: tournamentID, Role: models.RoleOwner}, nil
		}

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		err := service.Delete(context.Background(), "auth0|owner", "t1", "other-owner")

		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("admin cannot delete", func(t *testing.T) {
		playerRepo := actorRepo(actorWithRole("admin", models.RoleAdmin))

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		err := service.Delete(context.Background(), "auth0|admin", "t1", "target")

		assert.ErrorIs(t, err, ErrOwnerRequired)
	})
}

func TestRegenerateClaimCode(t *testing.T) {
	admin := actorWithRole("admin", models.RoleAdmin)

	t.Run("linked player cannot get a new code", func(t *testing.T) {
		playerRepo := actorRepo(admin)
		playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
			return &models.Player{ID: playerID, TournamentID: tournamentID, UserID: strPtr("u1")}, nil
		}

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		_, err := service.RegenerateClaimCode(context.Background(), "auth0|admin", "t1", "guest")

		assert.ErrorIs(t, err, ErrPlayerAlreadyLinked)
	})

	t.Run("new code replaces hash and expiry", func(t *testing.T) {
		guest := &models.Player{ID: "guest", TournamentID: "t1", Name: "Guest"}
		playerRepo := actorRepo(admin)
		playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
			return guest, nil
		}
		var saved *models.Player
		playerRepo.UpdateFunc = func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
			saved = player
			return nil
		}
		clock := clockwork.NewFakeClock()

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clock)
		code, err := service.RegenerateClaimCode(context.Background(), "auth0|admin", "t1", "guest")

		assert.NoError(t, err)
		assert.Len(t, code, 8)
		assert.NotNil(t, saved)
		assert.Equal(t, hashCode(code), *saved.ClaimCodeHash)
		assert.Equal(t, clock.Now().Add(codeTTL), *saved.ClaimCodeExpiresAt)
	})
}

func TestClaim(t *testing.T) {
	user := &models.User{ID: "u1", AuthID: "auth0|u1", Email: "ana@example.com"}
	clock := clockwork.NewFakeClock()
	code := "A1B2C3D4"
	codeHash := hashCode(code)

	freshGuest := func() *models.Player {
		expires := clock.Now().Add(codeTTL)
		return &models.Player{
			ID:                 "guest",
			TournamentID:       "t1",
			Name:               "Guest",
			Role:               models.RoleUser,
			ClaimCodeHash:      &codeHash,
			ClaimCodeExpiresAt: &expires,
		}
	}

	newRepos := func(guest *models.Player) (*fakePlayerRepo, *fakeUserRepo) {
		playerRepo := &fakePlayerRepo{
			GetByClaimCodeHashFunc: func(ctx context.Context, tournamentID *string, hash string) (*models.Player, error) {
				if hash != codeHash {
					return nil, repositories.ErrPlayerNotFound
				}
				return guest, nil
			},
			GetByTournamentAndUserFn: func(ctx context.Context, tournamentID, userID string) (*models.Player, error) {
				return nil, repositories.ErrPlayerNotFound
			},
			UpdateFunc: func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
				return nil
			},
		}
		userRepo := &fakeUserRepo{
			GetByAuthIDFunc: func(ctx context.Context, authID string) (*models.User, error) {
				return user, nil
			},
		}
		return playerRepo, userRepo
	}

	t.Run("links the guest and clears the code", func(t *testing.T) {
		guest := freshGuest()
		playerRepo, userRepo := newRepos(guest)

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		player, err := service.Claim(context.Background(), "auth0|u1", code)

		assert.NoError(t, err)
		assert.Equal(t, "u1", *player.UserID)
		assert.Nil(t, player.ClaimCodeHash)
		assert.Nil(t, player.ClaimCodeExpiresAt)
		assert.Equal(t, user, player.User)
	})

	t.Run("claim codes are case and whitespace insensitive", func(t *testing.T) {
		guest := freshGuest()
		playerRepo, userRepo := newRepos(guest)

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		_, err := service.Claim(context.Background(), "auth0|u1", "  a1b2c3d4 ")

		assert.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		playerRepo, userRepo := newRepos(freshGuest())

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		_, err := service.Claim(context.Background(), "auth0|u1", "FFFFFFFF")

		assert.ErrorIs(t, err, ErrCodeInvalid)
	})

	t.Run("expired code", func(t *testing.T) {
		guest := freshGuest()
		playerRepo, userRepo := newRepos(guest)
		lateClock := clockwork.NewFakeClockAt(clock.Now().Add(codeTTL).Add(time.Minute))

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, lateClock)
		_, err := service.Claim(context.Background(), "auth0|u1", code)

		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("already linked guest", func(t *testing.T) {
		guest := freshGuest()
		guest.UserID = strPtr("someone-else")
		playerRepo, userRepo := newRepos(guest)

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		_, err := service.Claim(context.Background(), "auth0|u1", code)

		assert.ErrorIs(t, err, ErrPlayerAlreadyLinked)
	})

	t.Run("user already plays in the tournament", func(t *testing.T) {
		guest := freshGuest()
		playerRepo, userRepo := newRepos(guest)
		playerRepo.GetByTournamentAndUserFn = func(ctx context.Context, tournamentID, userID string) (*models.Player, error) {
			return &models.Player{ID: "existing", TournamentID: tournamentID}, nil
		}

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		_, err := service.Claim(context.Background(), "auth0|u1", code)

		assert.ErrorIs(t, err, ErrUserAlreadyInTournament)
	})

	t.Run("global claim searches across tournaments", func(t *testing.T) {
		guest := freshGuest()
		playerRepo, userRepo := newRepos(guest)
		var seenScope *string
		base := playerRepo.GetByClaimCodeHashFunc
		playerRepo.GetByClaimCodeHashFunc = func(ctx context.Context, tournamentID *string, hash string) (*models.Player, error) {
			seenScope = tournamentID
			return base(ctx, tournamentID, hash)
		}

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		_, err := service.Claim(context.Background(), "auth0|u1", code)

		assert.NoError(t, err)
		assert.Nil(t, seenScope)
	})
}

func TestClaimInTournament(t *testing.T) {
	user := &models.User{ID: "u1", AuthID: "auth0|u1"}
	clock := clockwork.NewFakeClock()
	code := "A1B2C3D4"
	codeHash := hashCode(code)
	expires := clock.Now().Add(codeTTL)

	newRepos := func() (*fakePlayerRepo, *fakeUserRepo) {
		playerRepo := &fakePlayerRepo{
			GetByClaimCodeHashFunc: func(ctx context.Context, tournamentID *string, hash string) (*models.Player, error) {
				if tournamentID == nil || *tournamentID != "t1" || hash != codeHash {
					return nil, repositories.ErrPlayerNotFound
				}
				guest := &models.Player{
					ID:                 "guest",
					TournamentID:       "t1",
					Name:               "Guest",
					Role:               models.RoleUser,
					ClaimCodeHash:      &codeHash,
					ClaimCodeExpiresAt: &expires,
				}
				return guest, nil
			},
			GetByTournamentAndUserFn: func(ctx context.Context, tournamentID, userID string) (*models.Player, error) {
				return nil, repositories.ErrPlayerNotFound
			},
			UpdateFunc: func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
				return nil
			},
		}
		userRepo := &fakeUserRepo{
			GetByAuthIDFunc: func(ctx context.Context, authID string) (*models.User, error) {
				return user, nil
			},
		}
		return playerRepo, userRepo
	}

	t.Run("code is resolved within the tournament", func(t *testing.T) {
		playerRepo, userRepo := newRepos()

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		player, err := service.ClaimInTournament(context.Background(), "auth0|u1", "t1", code)

		assert.NoError(t, err)
		assert.Equal(t, "u1", *player.UserID)
		assert.Nil(t, player.ClaimCodeHash)
	})

	t.Run("another tournament's code does not match", func(t *testing.T) {
		playerRepo, userRepo := newRepos()

		service := NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clock)
		_, err := service.ClaimInTournament(context.Background(), "auth0|u1", "t2", code)

		assert.ErrorIs(t, err, ErrCodeInvalid)
	})
}

func TestLinkToUser(t *testing.T) {
	admin := actorWithRole("admin", models.RoleAdmin)
	user := &models.User{ID: "u1", AuthID: "auth0|u1", Name: "Ana"}

	newService := func(guest *models.Player) (PlayerService, *fakePlayerRepo) {
		playerRepo := actorRepo(admin)
		playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
			return guest, nil
		}
		playerRepo.GetByTournamentAndUserFn = func(ctx context.Context, tournamentID, userID string) (*models.Player, error) {
			return nil, repositories.ErrPlayerNotFound
		}
		playerRepo.UpdateFunc = func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
			return nil
		}
		userRepo := &fakeUserRepo{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				if id != user.ID {
					return nil, repositories.ErrUserNotFound
				}
				return user, nil
			},
		}
		return NewPlayerService(playerRepo, userRepo, &fakeTxManager{}, clockwork.NewFakeClock()), playerRepo
	}

	freshGuest := func() *models.Player {
		hash := hashCode("A1B2C3D4")
		expires := clockwork.NewFakeClock().Now().Add(codeTTL)
		return &models.Player{
			ID:                 "guest",
			TournamentID:       "t1",
			Name:               "Guest",
			Role:               models.RoleUser,
			ClaimCodeHash:      &hash,
			ClaimCodeExpiresAt: &expires,
		}
	}

	t.Run("links the guest and retires the code", func(t *testing.T) {
		service, _ := newService(freshGuest())
		player, err := service.LinkToUser(context.Background(), "auth0|admin", "t1", "guest", "u1")

		assert.NoError(t, err)
		assert.Equal(t, "u1", *player.UserID)
		assert.Nil(t, player.ClaimCodeHash)
		assert.Nil(t, player.ClaimCodeExpiresAt)
		assert.Equal(t, user, player.User)
	})

	t.Run("plain member cannot link", func(t *testing.T) {
		playerRepo := actorRepo(actorWithRole("p1", models.RoleUser))

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		_, err := service.LinkToUser(context.Background(), "auth0|p1", "t1", "guest", "u1")

		assert.ErrorIs(t, err, ErrEditorRequired)
	})

	t.Run("already linked player", func(t *testing.T) {
		guest := freshGuest()
		guest.UserID = strPtr("someone-else")
		service, _ := newService(guest)

		_, err := service.LinkToUser(context.Background(), "auth0|admin", "t1", "guest", "u1")

		assert.ErrorIs(t, err, ErrPlayerAlreadyLinked)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, _ := newService(freshGuest())
		_, err := service.LinkToUser(context.Background(), "auth0|admin", "t1", "guest", "nobody")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("user already plays in the tournament", func(t *testing.T) {
		service, playerRepo := newService(freshGuest())
		playerRepo.GetByTournamentAndUserFn = func(ctx context.Context, tournamentID, userID string) (*models.Player, error) {
			return &models.Player{ID: "existing", TournamentID: tournamentID}, nil
		}

		_, err := service.LinkToUser(context.Background(), "auth0|admin", "t1", "guest", "u1")

		assert.ErrorIs(t, err, ErrUserAlreadyInTournament)
	})
}

func TestGetClaimCodeMeta(t *testing.T) {
	admin := actorWithRole("admin", models.RoleAdmin)

	t.Run("guest reports its expiry", func(t *testing.T) {
		expires := clockwork.NewFakeClock().Now().Add(codeTTL)
		hash := hashCode("A1B2C3D4")
		playerRepo := actorRepo(admin)
		playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
			return &models.Player{ID: playerID, TournamentID: tournamentID, ClaimCodeHash: &hash, ClaimCodeExpiresAt: &expires}, nil
		}

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		got, err := service.GetClaimCodeMeta(context.Background(), "auth0|admin", "t1", "guest")

		assert.NoError(t, err)
		assert.Equal(t, expires, *got)
	})

	t.Run("linked player has no code", func(t *testing.T) {
		playerRepo := actorRepo(admin)
		playerRepo.GetByTournamentAndIDFunc = func(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
			return &models.Player{ID: playerID, TournamentID: tournamentID, UserID: strPtr("u1")}, nil
		}

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		got, err := service.GetClaimCodeMeta(context.Background(), "auth0|admin", "t1", "player")

		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("plain member cannot read code metadata", func(t *testing.T) {
		playerRepo := actorRepo(actorWithRole("p1", models.RoleUser))

		service := NewPlayerService(playerRepo, &fakeUserRepo{}, &fakeTxManager{}, clockwork.NewFakeClock())
		_, err := service.GetClaimCodeMeta(context.Background(), "auth0|p1", "t1", "guest")

		assert.ErrorIs(t, err, ErrEditorRequired)
	})
}
