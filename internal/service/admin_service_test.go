package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestAdminListsByRole(t *testing.T) {
	f := newTicketFixture(t, config.NotificationConfig{})
	svc := NewAdminService(f.users)
	ctx := context.Background()

	techs, err := svc.ListTechnicians(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, techs, 2)
	assert.Equal(t, "tess", techs[0].Username)

	users, err := svc.ListUsers(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.ListUsers(ctx, f.tech)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestAdminDeleteRespectsRole(t *testing.T) {
	f := newTicketFixture(t, config.NotificationConfig{})
	svc := NewAdminService(f.users)
	ctx := context.Background()

	requireCode(t, svc.DeleteTechnician(ctx, f.admin, f.owner.ID), apperrors.CodeNotFound)
	requireCode(t, svc.DeleteUser(ctx, f.admin, "17"), apperrors.CodeNotFound)
	requireCode(t, svc.DeleteUser(ctx, f.owner, f.otherUser.ID), apperrors.CodeForbidden)

	require.NoError(t, svc.DeleteTechnician(ctx, f.admin, f.tech.ID))
	techs, err := svc.ListTechnicians(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, domain.RoleTechnician, techs[0].Role)
	assert.Equal(t, "theo", techs[0].Username)
}
