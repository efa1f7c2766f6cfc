package interp

import (
	"fmt"

	"github.com/nkoval/govscan/internal/domain"
)

func errMissingAssets(call *domain.Call) error {
	return fmt.Errorf("call %s: missing or empty assets vector", call.CallIndex)
}

func errBadAssets(call *domain.Call, err error) error {
	return fmt.Errorf("call %s: malformed assets vector: %v", call.CallIndex, err)
}
