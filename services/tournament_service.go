package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
	"github.com/juangiadev/fulbo/storage"
)

// BannerKind selects which of the tournament's images an upload
// replaces.
type BannerKind string

const (
	BannerKindImage  BannerKind = "image"
	BannerKindLeader BannerKind = "leader"
	BannerKindScorer BannerKind = "scorer"
)

func (k BannerKind) Valid() bool {
	return k == BannerKindImage || k == BannerKindLeader || k == BannerKindScorer
}

type CreateTournamentInput struct {
	Name       string                      `json:"name"`
	Visibility models.TournamentVisibility `json:"visibility"`
	// PlayerNickname seeds the owner's player card.
	PlayerNickname *string `json:"player_nickname"`
}

type UpdateTournamentInput struct {
	Name       *string                      `json:"name"`
	Visibility *models.TournamentVisibility `json:"visibility"`
	FinishedAt *time.Time                   `json:"finished_at"`
}

type TournamentService interface {
	Create(ctx context.Context, authID string, input CreateTournamentInput) (*models.Tournament, error)
	// List returns the tournaments the user belongs to plus the ones
	// with a pending join request, flagged via MembershipStatus.
	List(ctx context.Context, authID string) ([]*models.Tournament, error)
	GetByID(ctx context.Context, authID, tournamentID string) (*models.Tournament, error)
	Update(ctx context.Context, authID, tournamentID string, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, authID, tournamentID string) error
	UploadBanner(ctx context.Context, authID, tournamentID string, kind BannerKind, contentType string, file io.Reader) (*models.Tournament, error)

	// RegenerateInvite replaces the tournament's join code and returns
	// the new code in plain text.
	RegenerateInvite(ctx context.Context, authID, tournamentID string) (*models.TournamentInvite, string, error)
	GetInvite(ctx context.Context, authID, tournamentID string) (*models.TournamentInvite, error)

	// RequestJoin files a pending join request for the tournament whose
	// invite code matches.
	RequestJoin(ctx context.Context, authID, code string) (*models.TournamentJoinRequest, error)
	ListJoinRequests(ctx context.Context, authID, tournamentID string) ([]*models.TournamentJoinRequest, error)
	// ApproveJoinRequest links the requesting user to an unlinked
	// player and marks the request approved, atomically.
	ApproveJoinRequest(ctx context.Context, authID, tournamentID, requestID, playerID string) error
	RejectJoinRequest(ctx context.Context, authID, tournamentID, requestID string) error
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	playerRepo      repositories.PlayerRepository
	matchRepo       repositories.MatchRepository
	userRepo        repositories.UserRepository
	inviteRepo      repositories.InviteRepository
	joinRequestRepo repositories.JoinRequestRepository
	txManager       TxManager
	uploader        storage.FileUploader
	clock           clockwork.Clock
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	inviteRepo repositories.InviteRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	txManager TxManager,
	uploader storage.FileUploader,
	clock clockwork.Clock,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		playerRepo:      playerRepo,
		matchRepo:       matchRepo,
		userRepo:        userRepo,
		inviteRepo:      inviteRepo,
		joinRequestRepo: joinRequestRepo,
		txManager:       txManager,
		uploader:        uploader,
		clock:           clock,
	}
}

func (s *tournamentService) getUser(ctx context.Context, authID string) (*models.User, error) {
	user, err := s.userRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by auth id: %w", err)
	}
	return user, nil
}

// Create inserts the tournament together with its OWNER player in one
// transaction, so a tournament can never exist without an owner.
func (s *tournamentService) Create(ctx context.Context, authID string, input CreateTournamentInput) (*models.Tournament, error) {
	user, err := s.getUser(ctx, authID)
	if err != nil {
		return nil, err
	}

	if input.Name == "" {
		return nil, ErrNameRequired
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	if !visibility.Valid() {
		return nil, ErrInvalidVisibility
	}

	tournament := &models.Tournament{
		Name:       input.Name,
		Visibility: visibility,
	}
	owner := &models.Player{
		UserID:            &user.ID,
		Name:              user.Name,
		Nickname:          input.PlayerNickname,
		ImageURL:          user.ImageURL,
		FavoriteTeamSlug:  user.FavoriteTeamSlug,
		DisplayPreference: user.DisplayPreference,
		Role:              models.RoleOwner,
	}
	if owner.Nickname == nil {
		owner.Nickname = user.Nickname
	}

	err = s.txManager.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		owner.TournamentID = tournament.ID
		if err := s.playerRepo.Create(ctx, exec, owner); err != nil {
			return fmt.Errorf("failed to create owner player: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tournament.Players = []models.Player{*owner}
	populateTournamentURLs(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, authID string) ([]*models.Tournament, error) {
	user, err := s.getUser(ctx, authID)
	if err != nil {
		return nil, err
	}

	var (
		member  []*models.Tournament
		pending []*models.TournamentJoinRequest
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		member, err = s.tournamentRepo.ListByMemberUser(gCtx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.joinRequestRepo.ListPendingByUser(gCtx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list tournaments for user %s: %w", user.ID, err)
	}

	tournaments := make([]*models.Tournament, 0, len(member)+len(pending))
	for _, t := range member {
		t.MembershipStatus = models.MembershipMember
		populateTournamentURLs(t, s.uploader)
		tournaments = append(tournaments, t)
	}
	for _, req := range pending {
		if req.Tournament == nil {
			continue
		}
		t := req.Tournament
		t.MembershipStatus = models.MembershipPending
		populateTournamentURLs(t, s.uploader)
		tournaments = append(tournaments, t)
	}
	return tournaments, nil
}

func (s *tournamentService) GetByID(ctx context.Context, authID, tournamentID string) (*models.Tournament, error) {
	if _, err := resolveActor(ctx, s.playerRepo, tournamentID, authID); err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}

	var (
		players []*models.Player
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %s details: %w", tournamentID, err)
	}

	tournament.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		tournament.Players = append(tournament.Players, *p)
	}
	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}
	tournament.MembershipStatus = models.MembershipMember
	populateTournamentURLs(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) Update(ctx context.Context, authID, tournamentID string, input UpdateTournamentInput) (*models.Tournament, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrNameRequired
		}
		tournament.Name = *input.Name
	}
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return nil, ErrInvalidVisibility
		}
		tournament.Visibility = *input.Visibility
	}
	if input.FinishedAt != nil {
		tournament.FinishedAt = input.FinishedAt
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %s: %w", tournamentID, err)
	}
	populateTournamentURLs(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, authID, tournamentID string) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireOwner(actor); err != nil {
		return err
	}

	if err := s.tournamentRepo.Delete(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %s: %w", tournamentID, err)
	}
	return nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, authID, tournamentID string, kind BannerKind, contentType string, file io.Reader) (*models.Tournament, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown banner kind", ErrValidationFailed)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	// A fresh object key per upload so stale CDN caches never serve
	// the previous banner.
	key := fmt.Sprintf("tournaments/%s/%s-%s%s", tournamentID, kind, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload %s banner: %w", kind, err)
	}

	var oldKey *string
	switch kind {
	case BannerKindImage:
		oldKey = tournament.ImageKey
		tournament.ImageKey = &key
	case BannerKindLeader:
		oldKey = tournament.LeaderBannerKey
		tournament.LeaderBannerKey = &key
	case BannerKindScorer:
		oldKey = tournament.ScorerBannerKey
		tournament.ScorerBannerKey = &key
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to store banner key for tournament %s: %w", tournamentID, err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != key {
		// Best effort. The new banner is already live.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	populateTournamentURLs(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) RegenerateInvite(ctx context.Context, authID, tournamentID string) (*models.TournamentInvite, string, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, "", err
	}
	if err := requireEditor(actor); err != nil {
		return nil, "", err
	}

	code, err := generateCode()
	if err != nil {
		return nil, "", err
	}
	invite := &models.TournamentInvite{
		TournamentID: tournamentID,
		CodeHash:     hashCode(code),
		ExpiresAt:    s.clock.Now().Add(codeTTL),
	}
	if err := s.inviteRepo.Upsert(ctx, invite); err != nil {
		return nil, "", fmt.Errorf("failed to store invite for tournament %s: %w", tournamentID, err)
	}
	return invite, code, nil
}

func (s *tournamentService) GetInvite(ctx context.Context, authID, tournamentID string) (*models.TournamentInvite, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	invite, err := s.inviteRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite for tournament %s: %w", tournamentID, err)
	}
	return invite, nil
}

func (s *tournamentService) RequestJoin(ctx context.Context, authID, code string) (*models.TournamentJoinRequest, error) {
	user, err := s.getUser(ctx, authID)
	if err != nil {
		return nil, err
	}

	invite, err := s.inviteRepo.GetByCodeHash(ctx, hashCode(code))
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if s.clock.Now().After(invite.ExpiresAt) {
		return nil, ErrCodeExpired
	}

	if _, err := s.playerRepo.GetByTournamentAndUser(ctx, invite.TournamentID, user.ID); err == nil {
		return nil, ErrUserAlreadyInTournament
	} else if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if _, err := s.joinRequestRepo.GetPendingByTournamentAndUser(ctx, invite.TournamentID, user.ID); err == nil {
		return nil, ErrJoinRequestPending
	} else if !errors.Is(err, repositories.ErrJoinRequestNotFound) {
		return nil, fmt.Errorf("failed to check pending join request: %w", err)
	}

	request := &models.TournamentJoinRequest{
		TournamentID: invite.TournamentID,
		UserID:       user.ID,
		Status:       models.JoinRequestPending,
	}
	if err := s.joinRequestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return request, nil
}

func (s *tournamentService) ListJoinRequests(ctx context.Context, authID, tournamentID string) ([]*models.TournamentJoinRequest, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	requests, err := s.joinRequestRepo.ListPendingByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests for tournament %s: %w", tournamentID, err)
	}
	return requests, nil
}

func (s *tournamentService) ApproveJoinRequest(ctx context.Context, authID, tournamentID, requestID, playerID string) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireEditor(actor); err != nil {
		return err
	}

	request, err := s.joinRequestRepo.GetPendingByID(ctx, tournamentID, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return ErrJoinRequestNotFound
		}
		return fmt.Errorf("failed to get join request %s: %w", requestID, err)
	}

	player, err := s.playerRepo.GetByTournamentAndID(ctx, tournamentID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	if player.IsLinked() {
		return ErrPlayerAlreadyLinked
	}

	player.UserID = &request.UserID
	player.ClaimCodeHash = nil
	player.ClaimCodeExpiresAt = nil

	return s.txManager.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.playerRepo.Update(ctx, exec, player); err != nil {
			if errors.Is(err, repositories.ErrPlayerUserConflict) {
				return ErrUserAlreadyInTournament
			}
			return fmt.Errorf("failed to link player %s to user %s: %w", player.ID, request.UserID, err)
		}
		if err := s.joinRequestRepo.UpdateStatus(ctx, exec, request.ID, models.JoinRequestApproved); err != nil {
			return fmt.Errorf("failed to approve join request %s: %w", request.ID, err)
		}
		return nil
	})
}

func (s *tournamentService) RejectJoinRequest(ctx context.Context, authID, tournamentID, requestID string) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireEditor(actor); err != nil {
		return err
	}

	request, err := s.joinRequestRepo.GetPendingByID(ctx, tournamentID, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return ErrJoinRequestNotFound
		}
		return fmt.Errorf("failed to get join request %s: %w", requestID, err)
	}

	if err := s.joinRequestRepo.UpdateStatus(ctx, nil, request.ID, models.JoinRequestRejected); err != nil {
		return fmt.Errorf("failed to reject join request %s: %w", request.ID, err)
	}
	return nil
}
