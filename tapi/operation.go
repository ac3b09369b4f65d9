package tapi

import "fmt"

// Operation is one of the generated table API procedures.
type Operation int

const (
	OpInsert Operation = iota
	OpSelect
	OpUpdate
	OpUpsert
	OpDelete
	OpMerge
)

// Operations lists every operation in generation order.
var Operations = []Operation{OpInsert, OpSelect, OpUpdate, OpUpsert, OpDelete, OpMerge}

// ParseOperation maps a user-supplied operation name to its Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "insert":
		return OpInsert, nil
	case "select":
		return OpSelect, nil
	case "update":
		return OpUpdate, nil
	case "upsert":
		return OpUpsert, nil
	case "delete":
		return OpDelete, nil
	case "merge":
		return OpMerge, nil
	}
	return 0, fmt.Errorf("unknown api type %q (expected insert, select, update, upsert, delete or merge)", s)
}

func (op Operation) String() string {
	switch op {
	case OpInsert:
		return "insert"
	case OpSelect:
		return "select"
	case OpUpdate:
		return "update"
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	case OpMerge:
		return "merge"
	}
	panic(fmt.Sprintf("tapi: invalid operation %d", int(op)))
}

// description is the label used in the generated banner comments.
func (op Operation) description() string {
	switch op {
	case OpInsert:
		return "Insert"
	case OpSelect:
		return "Select"
	case OpUpdate:
		return "Update"
	case OpUpsert:
		return "Upsert"
	case OpDelete:
		return "Delete"
	case OpMerge:
		return "Merge"
	}
	panic(fmt.Sprintf("tapi: invalid operation %d", int(op)))
}

// SignatureStyle selects between one parameter per column and a single
// %rowtype parameter.
type SignatureStyle int

const (
	StyleColType SignatureStyle = iota
	StyleRowType
)

// ParseSignatureStyle maps a configured signature type name to its style.
func ParseSignatureStyle(s string) (SignatureStyle, error) {
	switch s {
	case "coltype":
		return StyleColType, nil
	case "rowtype":
		return StyleRowType, nil
	}
	return 0, fmt.Errorf("unknown signature type %q (expected coltype or rowtype)", s)
}

func (st SignatureStyle) String() string {
	switch st {
	case StyleColType:
		return "coltype"
	case StyleRowType:
		return "rowtype"
	}
	panic(fmt.Sprintf("tapi: invalid signature style %d", int(st)))
}

// assignOp selects which expression set and parameter form a column
// assignment resolves to.
type assignOp int

const (
	assignCreate assignOp = iota
	assignModify
	assignMergeCreate
	assignMergeModify
)
