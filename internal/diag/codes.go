package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Lifting
	LiftInfo               Code = 1000
	LiftUnknownWindow      Code = 1001
	LiftInvalidElementSize Code = 1002
	LiftValueUnassigned    Code = 1003
	LiftUnbalancedSaves    Code = 1004
	LiftUseBeforeDefine    Code = 1005

	// Metadata resolution
	MetaInfo               Code = 2000
	MetaThreadOffsetMiss   Code = 2001
	MetaLeafSignatureMiss  Code = 2002
	MetaPoolEntryMiss      Code = 2003
	MetaUnresolvedFunction Code = 2004
	MetaUnknownClass       Code = 2005

	// Snapshot store
	SnapInfo        Code = 3000
	SnapBadSchema   Code = 3001
	SnapBadString   Code = 3002
	SnapDuplicateID Code = 3003
)

func (c Code) String() string {
	return fmt.Sprintf("DL%04d", uint16(c))
}
