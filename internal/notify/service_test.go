package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/notify"
	"github.com/ntumia/mediahub/internal/policy"
	"github.com/ntumia/mediahub/internal/testutil"
)

func TestService_ListAndMarkRead(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	svc := notify.NewService(tc.DB)
	other := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleViewer)
	ctx := context.Background()

	first, err := svc.Create(ctx, tc.Admin.ID, models.NotificationTypeApproval, "Approved", "Organization approved")
	require.NoError(t, err)
	_, err = svc.Create(ctx, tc.Admin.ID, models.NotificationTypeSystem, "Welcome", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, other.ID, models.NotificationTypeDownload, "Downloaded", "")
	require.NoError(t, err)

	// Listing is scoped to the user.
	list, err := svc.List(ctx, tc.Admin.ID, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	count, err := svc.UnreadCount(ctx, tc.Admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(ctx, tc.Admin.ID, first.ID))

	unread, err := svc.List(ctx, tc.Admin.ID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, svc.MarkAllRead(ctx, tc.Admin.ID))

	count, err = svc.UnreadCount(ctx, tc.Admin.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The other user's notification stays untouched.
	count, err = svc.UnreadCount(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestService_MarkRead_WrongUser(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	svc := notify.NewService(tc.DB)
	other := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleViewer)
	ctx := context.Background()

	n, err := svc.Create(ctx, tc.Admin.ID, models.NotificationTypeSystem, "Private", "")
	require.NoError(t, err)

	err = svc.MarkRead(ctx, other.ID, n.ID)
	assert.ErrorIs(t, err, notify.ErrNotFound)
}
