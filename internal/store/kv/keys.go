package kv

import (
	"bytes"
	"net/url"
)

const (
	officePrefix      = "office/"
	officeOwnerPrefix = "office_owner/"
	employeePrefix    = "employee/"
)

func officeKey(id string) []byte {
	return []byte(officePrefix + id)
}

func employeeKey(id string) []byte {
	return []byte(employeePrefix + id)
}

// ownerPrefix scopes the owner index. Owners are escaped so one owner can
// never be a prefix of another.
func ownerPrefix(owner string) []byte {
	return []byte(officeOwnerPrefix + url.PathEscape(owner) + "/")
}

func ownerIndexKey(owner, id string) []byte {
	return append(ownerPrefix(owner), id...)
}

// idFromIndexKey returns the office id of an owner index key.
func idFromIndexKey(prefix, key []byte) string {
	return string(bytes.TrimPrefix(key, prefix))
}
