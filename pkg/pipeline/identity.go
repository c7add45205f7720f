package pipeline

import "fmt"

// InputIdentity is the weak key that detects "same logical input" across
// repeated interactions: upload name plus byte size. Two distinct images with
// an identical name and size alias to the same cache entry; the design trades
// that collision risk for never hashing image bytes on a rerun.
type InputIdentity string

func NewInputIdentity(name string, size int64) InputIdentity {
	return InputIdentity(fmt.Sprintf("%s_%d", name, size))
}
