package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPayloadKey returns the cache key for an exam's candidate payload
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// GradingReplyKey returns the correlation key a grading reply is pushed to.
// The session id is the correlation id of the request/reply exchange.
func (r *CacheKeyStruct) GradingReplyKey(sessionID string) string {
	return fmt.Sprintf("grading:session:%s:reply", sessionID)
}

var CacheKey = NewCacheKeyStruct()
