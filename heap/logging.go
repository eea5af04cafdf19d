package heap

import (
	"fmt"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// logInfo mirrors server/lsp.go's own use of commonlog: construct an info
// message for the given text. The diagnostic call sites in heap.go
// (CollectAll, Close) call this the same bare way lsp.go does, rather
// than assuming a broader Logger API this package has no verified call
// site for.
func logInfo(format string, args ...any) {
	commonlog.NewInfoMessage(0, fmt.Sprintf(format, args...))
}
