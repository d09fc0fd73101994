package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAction_Valid(t *testing.T) {
	valid := []Action{
		ActionCreate, ActionUpdate, ActionDelete, ActionRead, ActionList,
		ActionLogin, ActionLogout, ActionLoginFailed, ActionLoginError,
		ActionAuthFailed, ActionAuthDenied, ActionAuthExpired, ActionAuthInvalid,
		ActionAuthError, ActionResetPassword, ActionRecoverPassword, ActionRefreshToken,
	}
	for _, a := range valid {
		assert.True(t, a.Valid(), "expected %q to be valid", a)
	}

	assert.False(t, Action("").Valid())
	assert.False(t, Action("explode").Valid())
	assert.False(t, Action("create-").Valid())
	assert.False(t, Action("explode-failed").Valid())
}

func TestAction_ValidDerivedForms(t *testing.T) {
	assert.True(t, ActionCreate.Failed().Valid())
	assert.True(t, ActionUpdate.Errored().Valid())
	assert.True(t, ActionResetPassword.Failed().Valid())
	assert.Equal(t, Action("delete-failed"), ActionDelete.Failed())
	assert.Equal(t, Action("login-error"), ActionLogin.Errored())
}

func TestAction_Listing(t *testing.T) {
	assert.True(t, ActionList.Listing())
	assert.True(t, Action("list-users").Listing())
	assert.False(t, ActionRead.Listing())
	assert.False(t, ActionLogin.Listing())
}

func TestModule_Valid(t *testing.T) {
	for _, m := range []Module{
		ModuleUsers, ModuleCities, ModuleMenus, ModuleMenuTypes,
		ModuleAnnouncements, ModuleAccess, ModuleLogs,
	} {
		assert.True(t, m.Valid(), "expected %q to be valid", m)
	}
	assert.False(t, Module("").Valid())
	assert.False(t, Module("gateways").Valid())
}
