package models

// TargetKind discriminates post audiences.
type TargetKind string

const (
	TargetGlobal     TargetKind = "global"
	TargetDepartment TargetKind = "department"
	TargetGroup      TargetKind = "group"
)

// Target is the tagged-variant form of post addressing. ID is zero for the
// global kind.
type Target struct {
	Kind TargetKind
	ID   uint
}

func GlobalTarget() Target            { return Target{Kind: TargetGlobal} }
func DepartmentTarget(id uint) Target { return Target{Kind: TargetDepartment, ID: id} }
func GroupTarget(id uint) Target      { return Target{Kind: TargetGroup, ID: id} }

// SetTarget derives the scope column and the single FK from the variant.
func (p *Post) SetTarget(t Target) {
	p.DepartmentID = nil
	p.GroupID = nil
	switch t.Kind {
	case TargetDepartment:
		p.Scope = ScopeDepartment
		id := t.ID
		p.DepartmentID = &id
	case TargetGroup:
		p.Scope = ScopeGroup
		id := t.ID
		p.GroupID = &id
	default:
		p.Scope = ScopeGlobal
	}
}

// Target reconstructs the variant from stored columns.
func (p *Post) Target() Target {
	switch p.Scope {
	case ScopeDepartment:
		if p.DepartmentID != nil {
			return DepartmentTarget(*p.DepartmentID)
		}
	case ScopeGroup:
		if p.GroupID != nil {
			return GroupTarget(*p.GroupID)
		}
	}
	return GlobalTarget()
}
