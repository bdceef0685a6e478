package mbs_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMBS(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MBS Suite")
}
