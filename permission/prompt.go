package permission

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/darkhz/bluescan/discovery"
	"github.com/fatih/color"
)

// TerminalPrompt returns a prompt which asks for each capability on the
// provided terminal, expecting a y/n answer per line. Any answer other than
// "y" or "yes" denies the capability.
func TerminalPrompt(in io.Reader, out io.Writer) PromptFunc {
	var mu sync.Mutex

	scanner := bufio.NewScanner(in)
	question := color.New(color.FgCyan, color.Bold)

	return func(capabilities []discovery.Capability) discovery.Grants {
		mu.Lock()
		defer mu.Unlock()

		grants := make(discovery.Grants, len(capabilities))

		for _, capability := range capabilities {
			question.Fprintf(out, "[?] Allow %s? (y/n) ", capability)

			if !scanner.Scan() {
				fmt.Fprintln(out)
				break
			}

			switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
			case "y", "yes":
				grants[capability] = true
			}
		}

		return grants
	}
}
