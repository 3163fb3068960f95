package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key tracking a user's active JWT session.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// ClassEventChannel returns the Redis PubSub channel for a class event stream.
func (r *CacheKeyStruct) ClassEventChannel(classID string) string {
	return fmt.Sprintf("class:%s:events", classID)
}

var CacheKey = NewCacheKeyStruct()
