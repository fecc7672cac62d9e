package service

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/clientlane/crm-server-go/internal/cipher"
	"github.com/clientlane/crm-server-go/internal/database"
	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/repository"
	"github.com/clientlane/crm-server-go/internal/util"
)

const (
	slugChars       = "abcdefghijklmnopqrstuvwxyz0123456789"
	slugLength      = 8
	slugMaxAttempts = 5
)

// Password composition is fixed: two characters from each class, shuffled.
// Ambiguous characters (0/O, 1/l/I) are excluded since visitors retype these
// by hand.
const (
	passwordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordLower   = "abcdefghijkmnpqrstuvwxyz"
	passwordDigits  = "23456789"
	passwordSymbols = "!@#$%&*?"
)

// CredentialService owns the portal credential lifecycle: slug and password
// generation, the dual hash+encrypted write, verification and owner reveal.
type CredentialService struct {
	db          *database.DB
	credRepo    repository.PortalCredentialRepository
	projectRepo repository.ProjectRepository
	cipher      cipher.Provider
}

// NewCredentialService creates a credential service. cipherProvider may be
// nil when no encryption key is configured; storing or revealing credentials
// then fails with a configuration error rather than degrading silently.
func NewCredentialService(
	db *database.DB,
	credRepo repository.PortalCredentialRepository,
	projectRepo repository.ProjectRepository,
	cipherProvider cipher.Provider,
) *CredentialService {
	return &CredentialService{
		db:          db,
		credRepo:    credRepo,
		projectRepo: projectRepo,
		cipher:      cipherProvider,
	}
}

// GenerateSlug produces a unique portal slug, regenerating on collision up
// to slugMaxAttempts before failing the enable operation.
func (s *CredentialService) GenerateSlug(ctx context.Context) (string, error) {
	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		slug := string(randomString(slugChars, slugLength))
		exists, err := s.credRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", apperrors.Database(err)
		}
		if !exists {
			return slug, nil
		}
		log.Warn().Int("attempt", attempt+1).Msg("portal slug collision, regenerating")
	}
	return "", apperrors.SlugExhausted()
}

// GeneratePassword returns an 8-character password with exactly two
// uppercase letters, two lowercase letters, two digits and two symbols.
func GeneratePassword() string {
	password := make([]byte, 0, 8)
	for _, class := range []string{passwordUpper, passwordLower, passwordDigits, passwordSymbols} {
		password = append(password, randomString(class, 2)...)
	}
	shuffle(password)
	return string(password)
}

// EnablePortal turns on portal sharing for a project. The first enablement
// mints a slug and password; re-enabling a previously disabled portal keeps
// the existing credential and returns an empty plaintext.
func (s *CredentialService) EnablePortal(ctx context.Context, projectID string) (*model.PortalCredential, string, error) {
	existing, err := s.credRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, "", apperrors.Database(err)
	}

	if existing != nil {
		err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			if err := s.credRepo.SetEnabled(ctx, tx, projectID, true); err != nil {
				return err
			}
			return s.projectRepo.SetPortalEnabled(ctx, tx, projectID, true)
		})
		if err != nil {
			return nil, "", apperrors.Database(err)
		}
		existing.Enabled = true
		log.Info().Str("projectId", projectID).Msg("portal re-enabled")
		return existing, "", nil
	}

	slug, err := s.GenerateSlug(ctx)
	if err != nil {
		return nil, "", err
	}

	plaintext := GeneratePassword()
	cred, err := s.store(ctx, projectID, slug, plaintext)
	if err != nil {
		return nil, "", err
	}

	log.Info().Str("projectId", projectID).Str("slug", util.MaskSlug(slug)).Msg("portal enabled")
	return cred, plaintext, nil
}

// RotatePassword regenerates the portal password, rewriting the hash and
// the encrypted copy together. The slug is unchanged so shared links keep
// working.
func (s *CredentialService) RotatePassword(ctx context.Context, projectID string) (string, error) {
	cred, err := s.credRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if cred == nil {
		return "", apperrors.NotFound("Portal credential")
	}

	plaintext := GeneratePassword()
	if _, err := s.store(ctx, projectID, cred.Slug, plaintext); err != nil {
		return "", err
	}

	log.Info().Str("projectId", projectID).Msg("portal password rotated")
	return plaintext, nil
}

// DisablePortal flips the enabled flags. Outstanding sessions are not
// deleted; they die on their next resolution via the enabled check.
func (s *CredentialService) DisablePortal(ctx context.Context, projectID string) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.credRepo.SetEnabled(ctx, tx, projectID, false); err != nil {
			return err
		}
		return s.projectRepo.SetPortalEnabled(ctx, tx, projectID, false)
	})
	if err != nil {
		return apperrors.Database(err)
	}
	log.Info().Str("projectId", projectID).Msg("portal disabled")
	return nil
}

func (s *CredentialService) FindBySlug(ctx context.Context, slug string) (*model.PortalCredential, error) {
	cred, err := s.credRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return cred, nil
}

func (s *CredentialService) FindByProjectID(ctx context.Context, projectID string) (*model.PortalCredential, error) {
	cred, err := s.credRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return cred, nil
}

// Verify compares a candidate against the stored hash only. The encrypted
// copy takes no part in verification.
func (s *CredentialService) Verify(ctx context.Context, projectID, candidate string) (bool, error) {
	cred, err := s.credRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if cred == nil {
		return false, nil
	}
	return util.CheckPasswordHash(candidate, cred.PasswordHash), nil
}

// Reveal decrypts the stored password for the owner's sharing view. A
// decryption failure yields an empty string, not an error: reveal is a
// convenience path and must not block the owner from the rest of the
// project.
func (s *CredentialService) Reveal(ctx context.Context, projectID string) (string, error) {
	if s.cipher == nil {
		return "", apperrors.Configuration("credential encryption key is not configured")
	}

	cred, err := s.credRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if cred == nil {
		return "", apperrors.NotFound("Portal credential")
	}

	plaintext, err := s.cipher.Decrypt(cred.PasswordEncrypted)
	if err != nil {
		log.Error().Err(err).Str("projectId", projectID).Msg("failed to decrypt portal password for reveal")
		return "", nil
	}
	return plaintext, nil
}

// store derives both persisted forms of the plaintext and writes them, with
// the project flag, in a single transaction.
func (s *CredentialService) store(ctx context.Context, projectID, slug, plaintext string) (*model.PortalCredential, error) {
	if s.cipher == nil {
		return nil, apperrors.Configuration("credential encryption key is not configured")
	}

	hash, err := util.HashPassword(plaintext)
	if err != nil {
		return nil, apperrors.Internal("failed to hash portal password").WithCause(err)
	}

	encrypted, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, apperrors.Internal("failed to encrypt portal password").WithCause(err)
	}

	var cred *model.PortalCredential
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		cred, err = s.credRepo.Upsert(ctx, tx, model.UpsertPortalCredentialParams{
			ProjectID:         projectID,
			Slug:              slug,
			PasswordHash:      hash,
			PasswordEncrypted: encrypted,
		})
		if err != nil {
			return err
		}
		return s.projectRepo.SetPortalEnabled(ctx, tx, projectID, true)
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return cred, nil
}

func randomString(chars string, length int) []byte {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		out[i] = chars[n.Int64()]
	}
	return out
}

func shuffle(b []byte) {
	for i := len(b) - 1; i > 0; i-- {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
}
