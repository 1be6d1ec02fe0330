// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/platform/authz"
	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
	"github.com/taibuivan/librio/internal/platform/postgres"
)

// PostgresRepository implements [Repository] and [authz.PolicySource].
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Groups

func (repository *PostgresRepository) List(context context.Context) ([]*Group, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s ORDER BY %s`,
		schema.PermissionGroup.ID, schema.PermissionGroup.Name, schema.PermissionGroup.Description,
		schema.PermissionGroup.Table, schema.PermissionGroup.Name)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_groups")
	}

	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Group, error) {
		group := &Group{Permissions: []Permission{}, Members: []Member{}}
		return group, row.Scan(&group.ID, &group.Name, &group.Description)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_groups")
	}

	byID := make(map[int]*Group, len(groups))
	for _, group := range groups {
		byID[group.ID] = group
	}

	permissions, err := repository.permissionRows(context)
	if err != nil {
		return nil, err
	}
	for _, row := range permissions {
		if group, ok := byID[row.groupID]; ok {
			group.Permissions = append(group.Permissions, Permission{Object: row.object, Action: row.action})
		}
	}

	members, err := repository.memberRows(context)
	if err != nil {
		return nil, err
	}
	for _, row := range members {
		if group, ok := byID[row.groupID]; ok {
			group.Members = append(group.Members, Member{UserID: row.userID, Username: row.username})
		}
	}

	return groups, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id int) (*Group, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.PermissionGroup.ID, schema.PermissionGroup.Name, schema.PermissionGroup.Description,
		schema.PermissionGroup.Table, schema.PermissionGroup.ID)

	group := &Group{Permissions: []Permission{}, Members: []Member{}}
	if err := repository.pool.QueryRow(context, query, id).Scan(&group.ID, &group.Name, &group.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, dberr.Wrap(err, "find_group")
	}

	permissions, err := repository.permissionRows(context)
	if err != nil {
		return nil, err
	}
	for _, row := range permissions {
		if row.groupID == id {
			group.Permissions = append(group.Permissions, Permission{Object: row.object, Action: row.action})
		}
	}
	return group, nil
}

func (repository *PostgresRepository) FindUser(context context.Context, userID string) (*Member, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Table, schema.UserAccount.ID)

	member := &Member{}
	if err := repository.pool.QueryRow(context, query, userID).Scan(&member.UserID, &member.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "find_user")
	}
	return member, nil
}

func (repository *PostgresRepository) Users(context context.Context, groupID int) ([]Member, []Member, error) {
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s,
		       EXISTS (SELECT 1 FROM %s m WHERE m.%s = $1 AND m.%s = a.%s) AS member
		FROM %s a
		ORDER BY a.%s`,
		schema.UserAccount.ID, schema.UserAccount.Username,
		schema.GroupMember.Table, schema.GroupMember.GroupID, schema.GroupMember.UserID, schema.UserAccount.ID,
		schema.UserAccount.Table,
		schema.UserAccount.Username)

	rows, err := repository.pool.Query(context, query, groupID)
	if err != nil {
		return nil, nil, dberr.Wrap(err, "list_group_users")
	}
	defer rows.Close()

	members, nonMembers := make([]Member, 0), make([]Member, 0)
	for rows.Next() {
		var (
			user     Member
			isMember bool
		)
		if err := rows.Scan(&user.UserID, &user.Username, &isMember); err != nil {
			return nil, nil, dberr.Wrap(err, "scan_group_user")
		}
		if isMember {
			members = append(members, user)
		} else {
			nonMembers = append(nonMembers, user)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, dberr.Wrap(err, "list_group_users")
	}
	return members, nonMembers, nil
}

// # Memberships

func insertMemberSQL() string {
	return fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		schema.GroupMember.Table, schema.GroupMember.GroupID, schema.GroupMember.UserID)
}

func deleteMemberSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.GroupMember.Table, schema.GroupMember.GroupID, schema.GroupMember.UserID)
}

func (repository *PostgresRepository) AddMember(context context.Context, groupID int, userID string) (bool, error) {
	tag, err := repository.pool.Exec(context, insertMemberSQL(), groupID, userID)
	if err != nil {
		return false, dberr.Wrap(err, "add_group_member")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) RemoveMember(context context.Context, groupID int, userID string) (bool, error) {
	tag, err := repository.pool.Exec(context, deleteMemberSQL(), groupID, userID)
	if err != nil {
		return false, dberr.Wrap(err, "remove_group_member")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) ToggleMember(context context.Context, groupID int, userID string) (bool, error) {
	var member bool
	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, deleteMemberSQL(), groupID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			member = false
			return nil
		}

		if _, err := tx.Exec(context, insertMemberSQL(), groupID, userID); err != nil {
			return err
		}
		member = true
		return nil
	})
	if err != nil {
		return false, dberr.Wrap(err, "toggle_group_member")
	}
	return member, nil
}

// # Policy Source

type permissionRow struct {
	groupID int
	group   string
	object  string
	action  string
}

type memberRow struct {
	groupID  int
	group    string
	userID   string
	username string
}

func (repository *PostgresRepository) permissionRows(context context.Context) ([]permissionRow, error) {
	query := fmt.Sprintf(`
		SELECT g.%s, g.%s, p.%s, p.%s
		FROM %s p
		JOIN %s g ON g.%s = p.%s
		ORDER BY g.%s, p.%s, p.%s`,
		schema.PermissionGroup.ID, schema.PermissionGroup.Name, schema.GroupPermission.Object, schema.GroupPermission.Action,
		schema.GroupPermission.Table,
		schema.PermissionGroup.Table, schema.PermissionGroup.ID, schema.GroupPermission.GroupID,
		schema.PermissionGroup.Name, schema.GroupPermission.Object, schema.GroupPermission.Action)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_group_permissions")
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (permissionRow, error) {
		var permission permissionRow
		return permission, row.Scan(&permission.groupID, &permission.group, &permission.object, &permission.action)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_group_permissions")
	}
	return result, nil
}

func (repository *PostgresRepository) memberRows(context context.Context) ([]memberRow, error) {
	query := fmt.Sprintf(`
		SELECT g.%s, g.%s, a.%s, a.%s
		FROM %s m
		JOIN %s g ON g.%s = m.%s
		JOIN %s a ON a.%s = m.%s
		ORDER BY g.%s, a.%s`,
		schema.PermissionGroup.ID, schema.PermissionGroup.Name, schema.UserAccount.ID, schema.UserAccount.Username,
		schema.GroupMember.Table,
		schema.PermissionGroup.Table, schema.PermissionGroup.ID, schema.GroupMember.GroupID,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.GroupMember.UserID,
		schema.PermissionGroup.Name, schema.UserAccount.Username)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_group_members")
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (memberRow, error) {
		var member memberRow
		return member, row.Scan(&member.groupID, &member.group, &member.userID, &member.username)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_group_members")
	}
	return result, nil
}

// Permissions implements [authz.PolicySource].
func (repository *PostgresRepository) Permissions(context context.Context) ([]authz.Permission, error) {
	rows, err := repository.permissionRows(context)
	if err != nil {
		return nil, err
	}

	permissions := make([]authz.Permission, 0, len(rows))
	for _, row := range rows {
		permissions = append(permissions, authz.Permission{Group: row.group, Object: row.object, Action: row.action})
	}
	return permissions, nil
}

// Memberships implements [authz.PolicySource].
func (repository *PostgresRepository) Memberships(context context.Context) ([]authz.Membership, error) {
	rows, err := repository.memberRows(context)
	if err != nil {
		return nil, err
	}

	memberships := make([]authz.Membership, 0, len(rows))
	for _, row := range rows {
		memberships = append(memberships, authz.Membership{UserID: row.userID, Group: row.group})
	}
	return memberships, nil
}
