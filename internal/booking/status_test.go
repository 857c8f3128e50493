package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
	}
	statuses := []string{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[[2]string{from, to}], CanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusCompleted))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("pending"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("DECLINED"))
}

func TestActorCapabilities(t *testing.T) {
	owner := Actor{UserID: 7, Role: RoleUser}
	other := Actor{UserID: 8, Role: RoleUser}
	mgr := Actor{UserID: 1, Role: RoleManager}
	admin := Actor{UserID: 2, Role: RoleAdmin}
	b := &model.Booking{ID: 1, UserID: 7}

	assert.False(t, owner.IsStaff())
	assert.True(t, mgr.IsStaff())
	assert.True(t, admin.IsStaff())

	assert.True(t, owner.CanActOn(b))
	assert.False(t, other.CanActOn(b))
	assert.True(t, mgr.CanActOn(b))

	assert.True(t, owner.Owns(b))
	assert.False(t, mgr.Owns(b))
	assert.False(t, Actor{}.Owns(b))
}
