/*
Package rapidhire is a recruitment intake bot that collects a candidate's profile
through a short guided dialogue and appends it to a spreadsheet.

The dialogue is a closed state machine:

	awaiting_name -> awaiting_graduation_year -> awaiting_target_language
	  -> awaiting_phone -> awaiting_phone_confirmation -> completed

The confirmation step can go back to awaiting_phone to edit the number, and every
open stage accepts a cancel that ends in cancelled.

# Architecture

The Bot is transport agnostic. A transport (Telegram, console) translates platform
updates into domain.Event values and renders the returned domain.Effect values.
Between the two, the Bot serialises events per session, runs the pure dialogue
engine, persists the session state and performs the single append of a confirmed
application through a guard that never lets a store failure reach the user.

# Usage

	bot, err := rapidhire.New(
		rapidhire.WithApplicationStore(sheetsStore),
		rapidhire.WithStateStore(redisStore),
	)
	if err != nil {
		log.Fatal(err)
	}

	effects, err := bot.Handle(ctx, domain.Event{
		Kind:      domain.EventStart,
		SessionID: "42:42",
	})
*/
package rapidhire
