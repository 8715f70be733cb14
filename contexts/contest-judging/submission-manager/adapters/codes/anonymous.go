package codes

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var submissionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("inkwell:contest-submission"))

// UUIDv5Coder derives TXT-XXXXXXXX codes from a name-based UUID over the
// contest and submission ids. Equal inputs always give the same code.
type UUIDv5Coder struct{}

func (UUIDv5Coder) Code(contestID int64, submissionID int64) string {
	name := strconv.FormatInt(contestID, 10) + ":" + strconv.FormatInt(submissionID, 10)
	id := uuid.NewSHA1(submissionNamespace, []byte(name))
	return "TXT-" + strings.ToUpper(id.String()[:8])
}
