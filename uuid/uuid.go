package uuid

import (
	"crypto/sha512"
	"encoding/hex"

	googleuuid "github.com/google/uuid"
)

var mock bool

func InitMock() {
	mock = true
}

func New() string {
	if mock {
		return "mockeduuid"
	}

	return googleuuid.New().String()
}

//configuration entities ids namespace
var namespace = googleuuid.NewSHA1(googleuuid.NameSpaceURL, []byte("https://commongateway.nl/vrijbrp"))

//NewFromKey returns the same uuid for the same key (name based, SHA-1)
func NewFromKey(key string) string {
	return googleuuid.NewSHA1(namespace, []byte(key)).String()
}

//IsUUID returns true if value is a valid uuid string
func IsUUID(value string) bool {
	_, err := googleuuid.Parse(value)
	return err == nil
}

//GetHash returns hex encoded sha384 of the payload (synchronization hash)
func GetHash(payload []byte) string {
	sum := sha512.Sum384(payload)
	return hex.EncodeToString(sum[:])
}
