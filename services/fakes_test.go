package services

import (
	"context"
	"errors"
	"io"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
	"github.com/juangiadev/fulbo/storage"
)

var errFakeNotConfigured = errors.New("fake method not configured")

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// fakeTxManager runs the function directly, handing it a nil executor.
// Repositories fall back to their own handle when the executor is nil,
// so fakes see the calls unchanged.
type fakeTxManager struct {
	runs int
}

func (m *fakeTxManager) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.runs++
	return fn(nil)
}

type fakeUserRepo struct {
	CreateFunc      func(ctx context.Context, user *models.User) error
	GetByIDFunc     func(ctx context.Context, id string) (*models.User, error)
	GetByAuthIDFunc func(ctx context.Context, authID string) (*models.User, error)
	UpdateFunc      func(ctx context.Context, user *models.User) error
	ListFunc        func(ctx context.Context) ([]*models.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.CreateFunc == nil {
		return errFakeNotConfigured
	}
	return f.CreateFunc(ctx, user)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.GetByIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeUserRepo) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	if f.GetByAuthIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByAuthIDFunc(ctx, authID)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.UpdateFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateFunc(ctx, user)
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	if f.ListFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListFunc(ctx)
}

type fakeTournamentRepo struct {
	CreateFunc           func(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error
	GetByIDFunc          func(ctx context.Context, id string) (*models.Tournament, error)
	ListByMemberUserFunc func(ctx context.Context, userID string) ([]*models.Tournament, error)
	UpdateFunc           func(ctx context.Context, t *models.Tournament) error
	DeleteFunc           func(ctx context.Context, id string) error
}

func (f *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	if f.CreateFunc == nil {
		return errFakeNotConfigured
	}
	return f.CreateFunc(ctx, exec, t)
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	if f.GetByIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeTournamentRepo) ListByMemberUser(ctx context.Context, userID string) ([]*models.Tournament, error) {
	if f.ListByMemberUserFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByMemberUserFunc(ctx, userID)
}

func (f *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	if f.UpdateFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateFunc(ctx, t)
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, id string) error {
	if f.DeleteFunc == nil {
		return errFakeNotConfigured
	}
	return f.DeleteFunc(ctx, id)
}

type fakePlayerRepo struct {
	CreateFunc               func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error
	GetByIDFunc              func(ctx context.Context, id string) (*models.Player, error)
	GetByTournamentAndIDFunc func(ctx context.Context, tournamentID, playerID string) (*models.Player, error)
	GetByTournamentAndUserFn func(ctx context.Context, tournamentID, userID string) (*models.Player, error)
	GetActorFunc             func(ctx context.Context, tournamentID, authID string) (*models.Player, error)
	ListByTournamentFunc     func(ctx context.Context, tournamentID string) ([]*models.Player, error)
	ListByIDsFunc            func(ctx context.Context, ids []string) ([]*models.Player, error)
	GetByClaimCodeHashFunc   func(ctx context.Context, tournamentID *string, codeHash string) (*models.Player, error)
	UpdateFunc               func(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error
	UpdateRoleFunc           func(ctx context.Context, exec repositories.SQLExecutor, playerID string, role models.PlayerRole) error
	DeleteFunc               func(ctx context.Context, id string) error
}

func (f *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if f.CreateFunc == nil {
		return errFakeNotConfigured
	}
	return f.CreateFunc(ctx, exec, player)
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id string) (*models.Player, error) {
	if f.GetByIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakePlayerRepo) GetByTournamentAndID(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
	if f.GetByTournamentAndIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByTournamentAndIDFunc(ctx, tournamentID, playerID)
}

func (f *fakePlayerRepo) GetByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.Player, error) {
	if f.GetByTournamentAndUserFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByTournamentAndUserFn(ctx, tournamentID, userID)
}

func (f *fakePlayerRepo) GetActor(ctx context.Context, tournamentID, authID string) (*models.Player, error) {
	if f.GetActorFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetActorFunc(ctx, tournamentID, authID)
}

func (f *fakePlayerRepo) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Player, error) {
	if f.ListByTournamentFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByTournamentFunc(ctx, tournamentID)
}

func (f *fakePlayerRepo) ListByIDs(ctx context.Context, ids []string) ([]*models.Player, error) {
	if f.ListByIDsFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByIDsFunc(ctx, ids)
}

func (f *fakePlayerRepo) GetByClaimCodeHash(ctx context.Context, tournamentID *string, codeHash string) (*models.Player, error) {
	if f.GetByClaimCodeHashFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByClaimCodeHashFunc(ctx, tournamentID, codeHash)
}

func (f *fakePlayerRepo) Update(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if f.UpdateFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateFunc(ctx, exec, player)
}

func (f *fakePlayerRepo) UpdateRole(ctx context.Context, exec repositories.SQLExecutor, playerID string, role models.PlayerRole) error {
	if f.UpdateRoleFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateRoleFunc(ctx, exec, playerID, role)
}

func (f *fakePlayerRepo) Delete(ctx context.Context, id string) error {
	if f.DeleteFunc == nil {
		return errFakeNotConfigured
	}
	return f.DeleteFunc(ctx, id)
}

type fakeMatchRepo struct {
	CreateFunc                   func(ctx context.Context, match *models.Match) error
	GetByIDFunc                  func(ctx context.Context, id string) (*models.Match, error)
	ListByTournamentFunc         func(ctx context.Context, tournamentID string) ([]*models.Match, error)
	ListFinishedByTournamentFunc func(ctx context.Context, tournamentID string) ([]*models.Match, error)
	UpdateFunc                   func(ctx context.Context, match *models.Match) error
	DeleteFunc                   func(ctx context.Context, id string) error
}

func (f *fakeMatchRepo) Create(ctx context.Context, match *models.Match) error {
	if f.CreateFunc == nil {
		return errFakeNotConfigured
	}
	return f.CreateFunc(ctx, match)
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	if f.GetByIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	if f.ListByTournamentFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByTournamentFunc(ctx, tournamentID)
}

func (f *fakeMatchRepo) ListFinishedByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	if f.ListFinishedByTournamentFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListFinishedByTournamentFunc(ctx, tournamentID)
}

func (f *fakeMatchRepo) Update(ctx context.Context, match *models.Match) error {
	if f.UpdateFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateFunc(ctx, match)
}

func (f *fakeMatchRepo) Delete(ctx context.Context, id string) error {
	if f.DeleteFunc == nil {
		return errFakeNotConfigured
	}
	return f.DeleteFunc(ctx, id)
}

type fakeTeamRepo struct {
	CreateFunc         func(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error
	GetByIDFunc        func(ctx context.Context, id string) (*models.Team, error)
	ListByMatchFunc    func(ctx context.Context, exec repositories.SQLExecutor, matchID string) ([]*models.Team, error)
	ListByMatchIDsFunc func(ctx context.Context, matchIDs []string) ([]*models.Team, error)
	CountByMatchFunc   func(ctx context.Context, matchID string) (int, error)
	UpdateFunc         func(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error
	DeleteFunc         func(ctx context.Context, id string) error
}

func (f *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if f.CreateFunc == nil {
		return errFakeNotConfigured
	}
	return f.CreateFunc(ctx, exec, team)
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id string) (*models.Team, error) {
	if f.GetByIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeTeamRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID string) ([]*models.Team, error) {
	if f.ListByMatchFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByMatchFunc(ctx, exec, matchID)
}

func (f *fakeTeamRepo) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]*models.Team, error) {
	if f.ListByMatchIDsFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByMatchIDsFunc(ctx, matchIDs)
}

func (f *fakeTeamRepo) CountByMatch(ctx context.Context, matchID string) (int, error) {
	if f.CountByMatchFunc == nil {
		return 0, errFakeNotConfigured
	}
	return f.CountByMatchFunc(ctx, matchID)
}

func (f *fakeTeamRepo) Update(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if f.UpdateFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateFunc(ctx, exec, team)
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id string) error {
	if f.DeleteFunc == nil {
		return errFakeNotConfigured
	}
	return f.DeleteFunc(ctx, id)
}

type fakePlayerTeamRepo struct {
	CreateFunc                   func(ctx context.Context, exec repositories.SQLExecutor, row *models.PlayerTeam) error
	GetByIDFunc                  func(ctx context.Context, id string) (*models.PlayerTeam, error)
	GetByMatchAndPlayerFunc      func(ctx context.Context, matchID, playerID string) (*models.PlayerTeam, error)
	ListByTeamFunc               func(ctx context.Context, exec repositories.SQLExecutor, teamID string) ([]*models.PlayerTeam, error)
	ListByTeamWithPlayersFunc    func(ctx context.Context, teamID string) ([]*models.PlayerTeam, error)
	ListFinishedByTournamentFunc func(ctx context.Context, tournamentID string) ([]*models.PlayerTeam, error)
	UpdateGoalsFunc              func(ctx context.Context, exec repositories.SQLExecutor, id string, goals int) error
	UpdateFunc                   func(ctx context.Context, exec repositories.SQLExecutor, row *models.PlayerTeam) error
	DeleteFunc                   func(ctx context.Context, exec repositories.SQLExecutor, id string) error
}

func (f *fakePlayerTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, row *models.PlayerTeam) error {
	if f.CreateFunc == nil {
		return errFakeNotConfigured
	}
	return f.CreateFunc(ctx, exec, row)
}

func (f *fakePlayerTeamRepo) GetByID(ctx context.Context, id string) (*models.PlayerTeam, error) {
	if f.GetByIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakePlayerTeamRepo) GetByMatchAndPlayer(ctx context.Context, matchID, playerID string) (*models.PlayerTeam, error) {
	if f.GetByMatchAndPlayerFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByMatchAndPlayerFunc(ctx, matchID, playerID)
}

func (f *fakePlayerTeamRepo) ListByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID string) ([]*models.PlayerTeam, error) {
	if f.ListByTeamFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByTeamFunc(ctx, exec, teamID)
}

func (f *fakePlayerTeamRepo) ListByTeamWithPlayers(ctx context.Context, teamID string) ([]*models.PlayerTeam, error) {
	if f.ListByTeamWithPlayersFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListByTeamWithPlayersFunc(ctx, teamID)
}

func (f *fakePlayerTeamRepo) ListFinishedByTournament(ctx context.Context, tournamentID string) ([]*models.PlayerTeam, error) {
	if f.ListFinishedByTournamentFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListFinishedByTournamentFunc(ctx, tournamentID)
}

func (f *fakePlayerTeamRepo) UpdateGoals(ctx context.Context, exec repositories.SQLExecutor, id string, goals int) error {
	if f.UpdateGoalsFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateGoalsFunc(ctx, exec, id, goals)
}

func (f *fakePlayerTeamRepo) Update(ctx context.Context, exec repositories.SQLExecutor, row *models.PlayerTeam) error {
	if f.UpdateFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateFunc(ctx, exec, row)
}

func (f *fakePlayerTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if f.DeleteFunc == nil {
		return errFakeNotConfigured
	}
	return f.DeleteFunc(ctx, exec, id)
}

type fakeInviteRepo struct {
	UpsertFunc          func(ctx context.Context, invite *models.TournamentInvite) error
	GetByTournamentFunc func(ctx context.Context, tournamentID string) (*models.TournamentInvite, error)
	GetByCodeHashFunc   func(ctx context.Context, codeHash string) (*models.TournamentInvite, error)
}

func (f *fakeInviteRepo) Upsert(ctx context.Context, invite *models.TournamentInvite) error {
	if f.UpsertFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpsertFunc(ctx, invite)
}

func (f *fakeInviteRepo) GetByTournament(ctx context.Context, tournamentID string) (*models.TournamentInvite, error) {
	if f.GetByTournamentFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByTournamentFunc(ctx, tournamentID)
}

func (f *fakeInviteRepo) GetByCodeHash(ctx context.Context, codeHash string) (*models.TournamentInvite, error) {
	if f.GetByCodeHashFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetByCodeHashFunc(ctx, codeHash)
}

type fakeJoinRequestRepo struct {
	CreateFunc                        func(ctx context.Context, request *models.TournamentJoinRequest) error
	GetPendingByIDFunc                func(ctx context.Context, tournamentID, requestID string) (*models.TournamentJoinRequest, error)
	GetPendingByTournamentAndUserFunc func(ctx context.Context, tournamentID, userID string) (*models.TournamentJoinRequest, error)
	ListPendingByTournamentFunc       func(ctx context.Context, tournamentID string) ([]*models.TournamentJoinRequest, error)
	ListPendingByUserFunc             func(ctx context.Context, userID string) ([]*models.TournamentJoinRequest, error)
	UpdateStatusFunc                  func(ctx context.Context, exec repositories.SQLExecutor, id string, status models.JoinRequestStatus) error
}

func (f *fakeJoinRequestRepo) Create(ctx context.Context, request *models.TournamentJoinRequest) error {
	if f.CreateFunc == nil {
		return errFakeNotConfigured
	}
	return f.CreateFunc(ctx, request)
}

func (f *fakeJoinRequestRepo) GetPendingByID(ctx context.Context, tournamentID, requestID string) (*models.TournamentJoinRequest, error) {
	if f.GetPendingByIDFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetPendingByIDFunc(ctx, tournamentID, requestID)
}

func (f *fakeJoinRequestRepo) GetPendingByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.TournamentJoinRequest, error) {
	if f.GetPendingByTournamentAndUserFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.GetPendingByTournamentAndUserFunc(ctx, tournamentID, userID)
}

func (f *fakeJoinRequestRepo) ListPendingByTournament(ctx context.Context, tournamentID string) ([]*models.TournamentJoinRequest, error) {
	if f.ListPendingByTournamentFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListPendingByTournamentFunc(ctx, tournamentID)
}

func (f *fakeJoinRequestRepo) ListPendingByUser(ctx context.Context, userID string) ([]*models.TournamentJoinRequest, error) {
	if f.ListPendingByUserFunc == nil {
		return nil, errFakeNotConfigured
	}
	return f.ListPendingByUserFunc(ctx, userID)
}

func (f *fakeJoinRequestRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.JoinRequestStatus) error {
	if f.UpdateStatusFunc == nil {
		return errFakeNotConfigured
	}
	return f.UpdateStatusFunc(ctx, exec, id, status)
}

type fakeUploader struct {
	UploadFunc func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error)
	DeleteFunc func(ctx context.Context, key string) error
	BaseURL    string
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.UploadFunc == nil {
		return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
	}
	return f.UploadFunc(ctx, key, contentType, reader)
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	if f.DeleteFunc == nil {
		return nil
	}
	return f.DeleteFunc(ctx, key)
}

func (f *fakeUploader) GetPublicURL(key string) string {
	base := f.BaseURL
	if base == "" {
		base = "https://cdn.test"
	}
	return base + "/" + key
}
