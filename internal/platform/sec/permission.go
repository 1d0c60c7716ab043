// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"math"
	"strings"
)

// # Member Permissions

// Permissions is the bitfield of capabilities attached to a member.
//
// The authentication core only carries it; what each bit allows is decided by
// the handlers that check it.
type Permissions uint16

const (
	// Access to otherwise hidden list data
	PermissionExtendedAccess Permissions = 1 << 0

	// Can review submitted records
	PermissionListHelper Permissions = 1 << 1

	// Can edit demons, players and records
	PermissionListModerator Permissions = 1 << 2

	// Can manage the list team
	PermissionListAdministrator Permissions = 1 << 3

	// Can manage member accounts
	PermissionModerator Permissions = 1 << 13

	// Unrestricted access
	PermissionAdministrator Permissions = 1 << 14
)

var permissionNames = []struct {
	bit  Permissions
	name string
}{
	{PermissionExtendedAccess, "extended_access"},
	{PermissionListHelper, "list_helper"},
	{PermissionListModerator, "list_moderator"},
	{PermissionListAdministrator, "list_administrator"},
	{PermissionModerator, "moderator"},
	{PermissionAdministrator, "administrator"},
}

// ErrPermissionsOutOfRange is returned by [ParsePermissions] for a stored value
// that does not fit the 16-bit field.
var ErrPermissionsOutOfRange = errors.New("sec: permissions out of range")

// ParsePermissions converts the members.permissions column into a bitfield.
func ParsePermissions(raw int32) (Permissions, error) {
	if raw < 0 || raw > math.MaxUint16 {
		return 0, ErrPermissionsOutOfRange
	}
	return Permissions(raw), nil
}

// Has reports whether every bit in required is set.
func (p Permissions) Has(required Permissions) bool {
	return p&required == required
}

// Bits returns the raw bitfield as stored in the members table.
func (p Permissions) Bits() int32 {
	return int32(p)
}

// Names lists the named permissions that are set, in bit order.
func (p Permissions) Names() []string {
	names := make([]string, 0, len(permissionNames))
	for _, entry := range permissionNames {
		if p.Has(entry.bit) {
			names = append(names, entry.name)
		}
	}
	return names
}

// String implements fmt.Stringer.
func (p Permissions) String() string {
	return strings.Join(p.Names(), "|")
}
