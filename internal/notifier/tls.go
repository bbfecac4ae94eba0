package notifier

import "crypto/tls"

func tlsConfig(verify bool) *tls.Config {
	if verify {
		return nil
	}
	return &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- operator opt-in via config, never the default
}
