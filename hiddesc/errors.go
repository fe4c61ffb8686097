package hiddesc

import "errors"

var (
	// ErrTruncatedDescriptor is returned when the byte stream ends in the
	// middle of an item.
	ErrTruncatedDescriptor = errors.New("truncated descriptor")
	// ErrUnbalancedCollection is returned for an End Collection without a
	// matching Collection, or for collections left open at end of stream.
	ErrUnbalancedCollection = errors.New("unbalanced collection")
	// ErrUnbalancedPushPop is returned when the global state stack is not
	// empty at end of stream, or for a Pop on an empty stack.
	ErrUnbalancedPushPop = errors.New("unbalanced push/pop")
	// ErrInvalidUsageRange is returned when Usage Maximum is smaller than
	// Usage Minimum.
	ErrInvalidUsageRange = errors.New("invalid usage range")
)
