package leadoff

import "errors"

// Rejection kinds. Extraction never fails a run; these label why a relay
// yielded no leadoff entry.
var (
	ErrNotFreeRelay  = errors.New("relay type has no comparable leadoff")
	ErrMissingSplit  = errors.New("leadoff split missing or unparsable")
	ErrMissingName   = errors.New("leadoff swimmer missing")
	ErrImplausible   = errors.New("leadoff time outside plausibility bounds")
	ErrNoSplitDetail = errors.New("relay has no split detail")
)
