package rpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Klingon-tech/golfmellow/internal/ledger"
	"github.com/Klingon-tech/golfmellow/internal/program"
	cerrors "github.com/cockroachdb/errors"
)

func TestTxError_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"program kind", &ledger.TxError{Instruction: 2, Err: cerrors.Wrap(program.SupplyExceeded, "cap")}, CodeProgramError},
		{"unknown program", &ledger.TxError{Instruction: 0, Err: fmt.Errorf("%w: x", ledger.ErrUnknownProgram)}, CodeTxRejected},
		{"invalid tx", fmt.Errorf("%w: no signatures", ledger.ErrInvalidTx), CodeTxRejected},
		{"duplicate", fmt.Errorf("%w: abc", ledger.ErrDuplicateTx), CodeTxRejected},
		{"storage failure inside instruction", &ledger.TxError{Instruction: 1, Err: errors.New("badger: read failed")}, CodeInternalError},
		{"storage failure outside instruction", errors.New("commit failed"), CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := txError(tt.err)
			if got.Code != tt.want {
				t.Errorf("code = %d, want %d (%s)", got.Code, tt.want, got.Message)
			}
		})
	}
}

func TestTxError_ProgramData(t *testing.T) {
	got := txError(&ledger.TxError{Instruction: 2, Err: cerrors.Wrap(program.SupplyExceeded, "cap")})
	data, ok := got.Data.(ProgramErrorData)
	if !ok {
		t.Fatalf("data = %T, want ProgramErrorData", got.Data)
	}
	if data.Kind != program.SupplyExceeded.Name() || data.Instruction != 2 {
		t.Errorf("data = %+v", data)
	}
}
