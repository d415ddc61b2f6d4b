package utils

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NewReferenceCode builds a short prefixed reference like "STY-6F3A8C12",
// readable enough to quote over the phone. Uniqueness rides on the uuid.
func NewReferenceCode(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + "-" + id[:8]
}

// EnvOrDefault returns the env value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// MustJSON marshals v into a JSON column value. Only used for values built
// in-process that cannot fail to encode.
func MustJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(raw)
}
