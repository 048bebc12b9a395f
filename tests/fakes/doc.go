// Package fakes provides test doubles for commonspack collaborators.
//
// Fakes are written by hand (not generated) so tests can script errors
// precisely.
//
//	kr := fakes.NewFakeKeyring()
//	kr.SetSecret("commonspack", "apiToken", "abc")
//	store := storage.NewWithClient("commonspack", kr, nil)
//
//	rt := fakes.NewScriptedTransport(
//	    fakes.Fail(syscall.ECONNRESET),
//	    fakes.Respond(200, `{"ok":true}`),
//	)
//	client := &http.Client{Transport: rt}
package fakes
