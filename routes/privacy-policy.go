package routes

import (
	"fmt"
	"net/http"
)

// PrivacyPolicyHandler serves the Privacy Policy content
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	html := `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Aura Privacy Policy</title>
	</head>
	<body>
		<h1>Privacy Policy</h1>
		<p>Aura stores your campus profile, the profiles you like, pass or block, and the messages you exchange with your matches.</p>
		<p>Blocking someone deletes your shared chat and its messages for both of you.</p>
		<p>Images you send in chat are kept only as long as the chat exists.</p>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
