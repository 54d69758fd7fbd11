package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_NormalizesWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, Fingerprint("hello world"), Fingerprint("Hello  World"))
	assert.Equal(t, Fingerprint("Senior Go Engineer\nRemote"), Fingerprint("  senior go engineer remote  "))
}

func TestFingerprint_DistinguishesContent(t *testing.T) {
	assert.NotEqual(t, Fingerprint("backend engineer at acme"), Fingerprint("frontend engineer at acme"))
}

func TestFingerprint_IsStable(t *testing.T) {
	fp := Fingerprint("Job description for a platform engineer")
	assert.Len(t, fp, 32)
	assert.Equal(t, fp, Fingerprint("Job description for a platform engineer"))
}
