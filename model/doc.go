// Package model lists the chat models the triage agent can run on.
//
// Models know their provider, which lets the client route a request without
// further configuration:
//
//	m, err := model.Parse("claude-haiku-4-5")
//	c := client.New(client.Config{Model: m, APIKeys: keys})
//
// Every catalog entry carries pricing so run history can record an
// estimated cost:
//
//	cost := model.Default.Cost(resp.Usage)
package model
