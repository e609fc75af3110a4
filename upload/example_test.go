package upload_test

import (
	"fmt"

	"github.com/loghoist/loghoist/upload"
)

func ExampleNormalizeFileName() {
	fmt.Println(upload.NormalizeFileName("/home/user/test.log"))
	fmt.Println(upload.NormalizeFileName("///a/b.log"))
	// Output: home-user-test.log
	// a-b.log
}

func ExampleGenerateRepoName() {
	fmt.Println(upload.GenerateRepoName("/home/user/test.log"))
	fmt.Println(upload.GenerateRepoName("/var/log/error.txt"))
	// Output: log-home-user-test
	// log-var-log-error.txt
}
