package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizzProgressChannel returns the Redis PubSub channel carrying progress
// snapshots for a quiz, keyed by its slug.
func (r *CacheKeyStruct) QuizzProgressChannel(slug string) string {
	return fmt.Sprintf("quizz:%s:progress", slug)
}

// RetentionLockKey returns the lock key preventing two instances from
// running the IP retention sweep at the same time.
func (r *CacheKeyStruct) RetentionLockKey() string {
	return "retention:ip_scrub:lock"
}

var CacheKey = NewCacheKeyStruct()
