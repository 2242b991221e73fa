package library

import (
	"context"
	"database/sql"
	"fmt"
)

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM user ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	return fetchUser(ensureContext(ctx), s.db, id)
}

// AddUser inserts a user.
func (s *Store) AddUser(ctx context.Context, in NewUser) (*User, error) {
	name, city, age, err := validateNewUser(in)
	if err != nil {
		return nil, err
	}

	var user *User
	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := timestamp()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO user (name, city, age, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			name, city, age, now, now)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		user, err = fetchUser(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies the present fields of patch to the user.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error) {
	if err := rejectNull(isNull("age", patch.Age)); err != nil {
		return nil, err
	}
	name, hasName, err := patchText("name", patch.Name)
	if err != nil {
		return nil, err
	}
	city, hasCity, err := patchText("city", patch.City)
	if err != nil {
		return nil, err
	}
	if age, ok := patch.Age.Get(); ok {
		if err := validateAge(age); err != nil {
			return nil, err
		}
	}

	var user *User
	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := fetchUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if hasName {
			current.Name = name
		}
		if hasCity {
			current.City = city
		}
		if age, ok := patch.Age.Get(); ok {
			current.Age = age
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE user SET name = ?, city = ?, age = ?, updated_at = ? WHERE id = ?`,
			current.Name, current.City, current.Age, timestamp(), id); err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		user, err = fetchUser(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user and their returned loans. Users with unreturned
// loans are rejected with ActiveLoans.
func (s *Store) DeleteUser(ctx context.Context, id int64) (*User, error) {
	var user *User
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := fetchUser(ctx, tx, id)
		if err != nil {
			return err
		}
		active, err := countActiveLoans(ctx, tx, "user_id", id)
		if err != nil {
			return err
		}
		if active > 0 {
			return invalidState(CodeActiveLoans,
				fmt.Sprintf("User has %d active loan(s); return them before deleting", active))
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM user WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
