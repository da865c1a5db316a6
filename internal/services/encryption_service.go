package services

import (
	"strings"

	"habitsync/internal/crypto"
	"habitsync/internal/models"
)

// EncryptionService applies the field cipher to the columns stored encrypted:
// user email and habit note text.
type EncryptionService struct {
	cipher *crypto.Cipher
}

func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	c, err := crypto.NewCipher(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailBlindIndex returns the lookup key for an email, ignoring case and surrounding space.
func (s *EncryptionService) EmailBlindIndex(email string) string {
	return s.cipher.BlindIndex(normalizeEmail(email))
}

// EncryptUser replaces the plaintext email with its ciphertext and fills the blind index.
func (s *EncryptionService) EncryptUser(user *models.User) error {
	email := normalizeEmail(user.Email)
	enc, err := s.cipher.Encrypt(email)
	if err != nil {
		return err
	}
	user.Email = enc
	user.EmailBlindIndex = s.cipher.BlindIndex(email)
	return nil
}

func (s *EncryptionService) DecryptUser(user *models.User) error {
	email, err := s.cipher.Decrypt(user.Email)
	if err != nil {
		return err
	}
	user.Email = email
	return nil
}

func (s *EncryptionService) EncryptNote(note *models.HabitNote) error {
	enc, err := s.cipher.Encrypt(note.Note)
	if err != nil {
		return err
	}
	note.Note = enc
	return nil
}

func (s *EncryptionService) DecryptNote(note *models.HabitNote) error {
	plain, err := s.cipher.Decrypt(note.Note)
	if err != nil {
		return err
	}
	note.Note = plain
	return nil
}

// EncryptText and DecryptText cover the optional note carried on a completion event.
func (s *EncryptionService) EncryptText(text *string) (*string, error) {
	if text == nil {
		return nil, nil
	}
	enc, err := s.cipher.Encrypt(*text)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

func (s *EncryptionService) DecryptText(text *string) (*string, error) {
	if text == nil {
		return nil, nil
	}
	plain, err := s.cipher.Decrypt(*text)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}
