package nouvelles

import (
	"database/sql"
	"errors"
	"strings"
)

// FindUserByEmail returns the user with the given email, or nil if none.
func (s *Store) FindUserByEmail(email string) (*User, error) {
	return s.findUser(`SELECT id, email, pseudo, password_hash, roles, created_at FROM users WHERE email = ?`, email)
}

// FindUserByPseudo returns the user with the given pseudo, or nil if none.
func (s *Store) FindUserByPseudo(pseudo string) (*User, error) {
	return s.findUser(`SELECT id, email, pseudo, password_hash, roles, created_at FROM users WHERE pseudo = ?`, pseudo)
}

// GetUser returns the user with the given id, or nil if none.
func (s *Store) GetUser(id int64) (*User, error) {
	return s.findUser(`SELECT id, email, pseudo, password_hash, roles, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) findUser(query string, arg any) (*User, error) {
	var u User
	err := s.db.QueryRow(query, arg).
		Scan(&u.ID, &u.Email, &u.Pseudo, &u.PasswordHash, &u.Roles, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser persists a new user and returns it with its assigned id.
// Email uniqueness is checked before pseudo uniqueness; that ordering is
// part of the API contract and shows in the conflict messages. The UNIQUE
// constraints remain authoritative: a concurrent duplicate slipping past
// the pre-checks still surfaces as the same conflict error.
func (s *Store) CreateUser(email, pseudo, passwordHash string, roles []string) (*User, error) {
	if existing, err := s.FindUserByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, Conflict("Email already in use.")
	}
	if existing, err := s.FindUserByPseudo(pseudo); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, Conflict("Pseudo already in use.")
	}

	roleCol := strings.Join(roles, ",")
	if roleCol == "" {
		roleCol = "ROLE_USER"
	}
	res, err := s.db.Exec(
		`INSERT INTO users (email, pseudo, password_hash, roles) VALUES (?, ?, ?, ?)`,
		email, pseudo, passwordHash, roleCol,
	)
	if isUniqueViolation(err, "users.email") {
		return nil, Conflict("Email already in use.")
	}
	if isUniqueViolation(err, "users.pseudo") {
		return nil, Conflict("Pseudo already in use.")
	}
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetUser(id)
}
