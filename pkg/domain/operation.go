package domain

import "fmt"

// Operation is the caller-requested action on a resource. The CRUD operations
// form a cross-product with every ResourceKind; the named transitions apply to
// applications only and are validated by the lifecycle machine after the
// policy engine has authorized the write.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"

	// Lifecycle transitions exposed as operations. The under_review -> scored
	// transition has no operation: it is system-triggered.
	OpSubmit      Operation = "submit"
	OpStartReview Operation = "start_review"
	OpDecide      Operation = "decide"

	// OpOverrideStatus is the admin-only correction path. Every use is
	// recorded as an audited exception.
	OpOverrideStatus Operation = "override_status"
)

var validOperations = map[Operation]struct{}{
	OpRead:           {},
	OpCreate:         {},
	OpUpdate:         {},
	OpDelete:         {},
	OpSubmit:         {},
	OpStartReview:    {},
	OpDecide:         {},
	OpOverrideStatus: {},
}

// ParseOperation validates and returns an Operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if _, ok := validOperations[op]; !ok {
		return "", fmt.Errorf("unknown operation: %s", s)
	}
	return op, nil
}

func (op Operation) String() string {
	return string(op)
}

// IsTransition reports whether the operation implies a lifecycle transition.
func (op Operation) IsTransition() bool {
	switch op {
	case OpSubmit, OpStartReview, OpDecide, OpOverrideStatus:
		return true
	}
	return false
}

// IsWrite reports whether the operation mutates the store.
func (op Operation) IsWrite() bool {
	return op != OpRead
}

// ResourceKind names the record types the gateway mediates access to.
type ResourceKind string

const (
	ResourceUser        ResourceKind = "user"
	ResourceApplication ResourceKind = "application"
	ResourceScore       ResourceKind = "score"
)

var validResourceKinds = map[ResourceKind]struct{}{
	ResourceUser:        {},
	ResourceApplication: {},
	ResourceScore:       {},
}

// ParseResourceKind validates and returns a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	k := ResourceKind(s)
	if _, ok := validResourceKinds[k]; !ok {
		return "", fmt.Errorf("unknown resource kind: %s", s)
	}
	return k, nil
}

func (k ResourceKind) String() string {
	return string(k)
}
