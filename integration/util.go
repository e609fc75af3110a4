//go:build integration
// +build integration

package integration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os/exec"

	"github.com/bitrise-io/go-utils/v2/log"
)

var logger = log.NewLogger()

func checksumOf(bytes []byte) string {
	hash := sha256.New()
	hash.Write(bytes)
	return hex.EncodeToString(hash.Sum(nil))
}

func checkTool(binaryName string) {
	_, err := exec.LookPath(binaryName)
	if err != nil {
		panic(fmt.Sprintf("%s is required for integration tests", binaryName))
	}
}

type dependencyCheckerStub struct {
	found bool
}

func (c dependencyCheckerStub) CheckDependencies() bool {
	return c.found
}
