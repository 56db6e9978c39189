package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var marketGreetings = [...]string{
	"Fresh listings went up while you were away. None of them are yours yet.",
	"A 2021 VinFast VF e34 just got approved. Somebody is going to favorite it before you.",
	"Battery packs don't sell themselves. Well, some do. Yours hasn't been listed.",
	"The moderators are reviewing posts right now. Yours is conspicuously absent.",
	"Range anxiety is real. Listing anxiety is optional.",
	"Every seller here started with one photo and a rough price. Start with yours.",
	"There are batteries at 90% state of health waiting for a buyer. Could be you.",
	"Your inbox is empty. That usually means you haven't posted anything.",
	"The marketplace is open. The door is a password prompt.",
	"Someone just sold a scooter for more than they paid. Come see how.",
	"Your favorites list is a blank page. That's fixable.",
	"Charged and ready. Waiting on you.",
}

func (a *app) printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#22d3ee")).
		Bold(true).
		Render("E V T B")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Buy and sell used EVs and batteries from the terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"evtb", "Open the marketplace (interactive TUI)"},
		{"evtb login", "Sign in with email and password"},
		{"evtb login --google", "Sign in with Google"},
		{"evtb login --facebook", "Sign in with Facebook"},
		{"evtb register", "Create an account"},
		{"evtb logout", "Clear your session"},
		{"evtb whoami", "Show the signed-in user and token state"},
		{"evtb token [status|refresh|copy]", "Inspect or refresh the bearer token"},
		{"evtb demo on|off", "Toggle demo mode (skips expiry checks)"},
		{"evtb listings [mine|pending]", "List approved, own or pending listings"},
		{"evtb listings create [images...]", "Post a listing for review"},
		{"evtb listings approve|reject ID", "Moderate a listing (admin)"},
		{"evtb listings verify ID", "Request inspection of a listing"},
		{"evtb favorites [toggle ID]", "Show or toggle saved listings"},
		{"evtb notify [PAGE|test|read-all]", "Notifications"},
		{"evtb inbox", "Open the notification inbox"},
		{"evtb health", "Check the backend"},
		{"evtb mock-server [ADDR]", "Serve the notification API in-process"},
		{"evtb --version", "Show version"},
		{"evtb help", "You are here"},
	}

	fmt.Fprintf(a.out, "\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Fprintf(a.out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-34s", c.cmd)), descStyle.Render(c.desc))
	}
	api := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("API: " + a.cfg.APIBase)
	fmt.Fprintf(a.out, "\n  %s\n\n", api)
}

func (a *app) printGreeting() {
	msg := marketGreetings[rand.IntN(len(marketGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#22d3ee")).
		Bold(true).
		Render("EVTB")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To enter: evtb login")

	fmt.Fprintf(a.out, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
