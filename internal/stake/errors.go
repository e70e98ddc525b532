package stake

import "fmt"

// Anchor numbers custom errors from 6000
const ErrorCodeOffset = 6000

// ProgramError is a custom error the staking program can return
type ProgramError struct {
	Code uint32
	Name string
	Msg  string
}

func (e ProgramError) String() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Msg)
}

var programErrors = []ProgramError{
	{Name: "StakePoolHasEnded", Msg: "Stake pool has ended"},
	{Name: "UnstakeAllTokens", Msg: "Please unstake all tokens before staking"},
	{Name: "PoolFrozen", Msg: "Pool is frozen"},
	{Name: "InvalidAdmin", Msg: "Invalid Pool Admin"},
	{Name: "InvalidSuperAdmin", Msg: "Invalid Super Admin"},
	{Name: "InvalidTokenAuthority", Msg: "Invalid Token Authority"},
	{Name: "MinStakeSecondsNotSatisfied", Msg: "Minimum stake seconds not satisfied"},
	{Name: "InvalidStaker", Msg: "Invalid Staker"},
}

func init() {
	for i := range programErrors {
		programErrors[i].Code = ErrorCodeOffset + uint32(i)
	}
}

// LookupError returns the program error for code
func LookupError(code uint32) (ProgramError, bool) {
	if code < ErrorCodeOffset || code-ErrorCodeOffset >= uint32(len(programErrors)) {
		return ProgramError{}, false
	}
	return programErrors[code-ErrorCodeOffset], true
}

// Errors returns every program error in code order
func Errors() []ProgramError {
	out := make([]ProgramError, len(programErrors))
	copy(out, programErrors)
	return out
}
