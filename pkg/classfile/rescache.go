package classfile

import (
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ResolutionHint records which constant-pool slots of a class were
// resolved in a previous run, and to what symbolic target, so a later run
// can warm its resolver instead of discovering the same classes cold. It
// is a hint only: the resolver in pkg/interp re-resolves every slot
// through the real ClassFinder/walk-the-chain logic regardless of what the
// cache says, so a stale or forged cache file can only cost a cache miss,
// never produce a wrong resolution.
type ResolutionHint struct {
	ClassName  string `cbor:"class"`
	PoolIndex  int    `cbor:"index"`
	TargetName string `cbor:"target"` // resolved class/field/method's owning class name
}

// ResolutionCache is the on-disk CBOR-encoded set of hints for one class
// loader session.
type ResolutionCache struct {
	Hints []ResolutionHint `cbor:"hints"`
}

// LoadResolutionCache reads a cache file written by Save. A missing file
// is not an error: it simply yields an empty cache.
func LoadResolutionCache(path string) (*ResolutionCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ResolutionCache{}, nil
		}
		return nil, err
	}
	var rc ResolutionCache
	if err := cbor.Unmarshal(data, &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}

// Save writes the cache to path as CBOR.
func (rc *ResolutionCache) Save(path string) error {
	data, err := cbor.Marshal(rc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Record appends a hint. Safe only for single-threaded use during a class
// loader session; the resolver reads hints back through Lookup during the
// same run.
func (rc *ResolutionCache) Record(className string, index int, targetName string) {
	rc.Hints = append(rc.Hints, ResolutionHint{ClassName: className, PoolIndex: index, TargetName: targetName})
}

// Lookup returns the cached target name for (className, index), if any.
func (rc *ResolutionCache) Lookup(className string, index int) (string, bool) {
	for _, h := range rc.Hints {
		if h.ClassName == className && h.PoolIndex == index {
			return h.TargetName, true
		}
	}
	return "", false
}
