package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
)

// StaffHeader is the header row of the Staff tab.
var StaffHeader = []string{"username", "pinHash", "role", "location"}

// Staff is a terminal login. PinHash is a bcrypt hash.
type Staff struct {
	Username string
	PinHash  string
	Role     string
	Location string
}

// FindStaff looks a login up by username, case-insensitively.
func (s *Store) FindStaff(ctx context.Context, username string) (Staff, error) {
	rows, err := s.readRows(ctx, enum.TabStaff, "A2:D")
	if err != nil {
		return Staff{}, fmt.Errorf("find staff: %w", err)
	}
	for _, row := range rows {
		if !strings.EqualFold(sheet.Cell(row, 0), username) {
			continue
		}
		role := strings.ToUpper(sheet.Cell(row, 2))
		if role == "" {
			role = enum.RoleStaff
		}
		return Staff{
			Username: sheet.Cell(row, 0),
			PinHash:  sheet.Cell(row, 1),
			Role:     role,
			Location: strings.ToUpper(sheet.Cell(row, 3)),
		}, nil
	}
	return Staff{}, ErrStaffNotFound
}

// CreateStaff appends a login row.
func (s *Store) CreateStaff(ctx context.Context, st Staff) error {
	if err := s.sheets.EnsureTab(ctx, enum.TabStaff, StaffHeader); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	if _, err := s.FindStaff(ctx, st.Username); err == nil {
		return ErrStaffExists
	} else if !errors.Is(err, ErrStaffNotFound) {
		return err
	}
	row := []any{st.Username, st.PinHash, st.Role, st.Location}
	if err := s.sheets.Append(ctx, timeutil.A1(enum.TabStaff, "A:D"), [][]any{row}); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}
