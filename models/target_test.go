package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTargetClearsStaleForeignKeys(t *testing.T) {
	var p Post

	p.SetTarget(DepartmentTarget(7))
	assert.Equal(t, ScopeDepartment, p.Scope)
	assert.NotNil(t, p.DepartmentID)
	assert.Nil(t, p.GroupID)

	p.SetTarget(GroupTarget(9))
	assert.Equal(t, ScopeGroup, p.Scope)
	assert.Nil(t, p.DepartmentID)
	assert.NotNil(t, p.GroupID)

	p.SetTarget(GlobalTarget())
	assert.Equal(t, ScopeGlobal, p.Scope)
	assert.Nil(t, p.DepartmentID)
	assert.Nil(t, p.GroupID)
}

func TestTargetRoundTrip(t *testing.T) {
	var p Post
	for _, target := range []Target{GlobalTarget(), DepartmentTarget(3), GroupTarget(5)} {
		p.SetTarget(target)
		assert.Equal(t, target, p.Target())
	}
}
