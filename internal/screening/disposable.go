package screening

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// defaultDisposableDomains is the built-in deny-list of disposable-mailbox
// providers, used when no external list file is configured.
var defaultDisposableDomains = []string{
	"tempmail.com", "guerrillamail.com", "10minutemail.com", "throwaway.email",
	"mailinator.com", "trashmail.com", "fakeinbox.com", "yopmail.com",
	"temp-mail.org", "getnada.com", "maildrop.cc", "sharklasers.com",
	"mintemail.com", "emailondeck.com", "mohmal.com", "mytemp.email",
	"dispostable.com", "throwawaymail.com", "tempinbox.com", "guerrillamailblock.com",
	"spamgourmet.com", "mailnesia.com", "mailcatch.com", "mailnator.com",
	"getairmail.com", "harakirimail.com", "anonymousemail.me", "deadaddress.com",
	"emailsensei.com", "mailexpire.com", "tempr.email", "tempmail.net",
	"disposablemail.com", "burnermail.io", "guerrillamail.net", "guerrillamail.org",
	"guerrillamail.biz", "spam4.me", "grr.la", "guerrillamail.de",
	"trbvm.com", "mailforspam.com", "spambox.us", "incognitomail.org",
	"tmailinator.com", "spamfree24.org", "spamfree24.com", "spamfree24.eu",
	"spamfree24.net", "spamfree24.info", "spamfree24.de", "wegwerfmail.de",
	"wegwerfmail.net", "wegwerfmail.org", "trashmail.net", "trashmail.org",
	"trashmail.me", "trashmail.de", "trashmail.at", "trashmail.fr",
	"trashmail.ws", "trash-mail.com", "trash-mail.de", "trash-mail.at",
	"trash-mail.cf", "trash-mail.ga", "trash-mail.gq", "trash-mail.ml",
	"trash-mail.tk", "mailtemp.info", "mailtemp.net", "mailtemp.org",
	"tempmail.de", "tempmail.eu", "tempmail.us", "tempmail.it",
	"tempmail.fr", "tempmail.co", "tempmail.ninja", "tempmail.plus",
	"tempmail.email", "tempmail.io", "tempmail.dev", "tempmail.top",
}

// loadDomainList reads one domain per line, ignoring blanks and #-comments.
func loadDomainList(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deny-list: %w", err)
	}
	defer f.Close()

	domains := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read deny-list: %w", err)
	}
	return domains, nil
}
