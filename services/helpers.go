package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
	"github.com/juangiadev/fulbo/storage"
)

// Claim and invite codes share the same shape: 8 hex characters from
// 4 random bytes, valid for 7 days, stored only as a SHA-256 hash.
const (
	codeByteLength = 4
	codeTTL        = 7 * 24 * time.Hour
)

func generateCode() (string, error) {
	buf := make([]byte, codeByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// hashCode normalizes the code before hashing so that redemption is
// whitespace- and case-insensitive.
func hashCode(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// resolveActor finds the player behind the authenticated subject in
// the given tournament. Every tournament-scoped operation starts here.
func resolveActor(ctx context.Context, playerRepo repositories.PlayerRepository, tournamentID, authID string) (*models.Player, error) {
	actor, err := playerRepo.GetActor(ctx, tournamentID, authID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrNotTournamentMember
		}
		return nil, fmt.Errorf("failed to resolve actor in tournament %s: %w", tournamentID, err)
	}
	return actor, nil
}

func requireEditor(actor *models.Player) error {
	if !actor.Role.IsEditor() {
		return ErrEditorRequired
	}
	return nil
}

func requireOwner(actor *models.Player) error {
	if actor.Role != models.RoleOwner {
		return ErrOwnerRequired
	}
	return nil
}

func populateTournamentURLs(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament == nil || uploader == nil {
		return
	}
	if tournament.ImageKey != nil && *tournament.ImageKey != "" {
		if url := uploader.GetPublicURL(*tournament.ImageKey); url != "" {
			tournament.ImageURL = &url
		}
	}
	if tournament.LeaderBannerKey != nil && *tournament.LeaderBannerKey != "" {
		if url := uploader.GetPublicURL(*tournament.LeaderBannerKey); url != "" {
			tournament.LeaderBannerURL = &url
		}
	}
	if tournament.ScorerBannerKey != nil && *tournament.ScorerBannerKey != "" {
		if url := uploader.GetPublicURL(*tournament.ScorerBannerKey); url != "" {
			tournament.ScorerBannerURL = &url
		}
	}
}

// GetExtensionFromContentType maps an image content type to a file
// extension for storage keys.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported image content type: %q", contentType)
	}
}
