package auth

import (
	"fmt"
	"strings"
)

// ShowTokenGuide prints the steps for obtaining a long-lived Graph API token
func ShowTokenGuide() {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("INSTAGRAM GRAPH API ACCESS TOKEN")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()
	fmt.Println("The API source needs the Instagram user id of the shop account and a")
	fmt.Println("long-lived access token. Without them igfeed falls back to the next source.")
	fmt.Println()
	fmt.Println("STEP 1: Create an app")
	fmt.Println("   - Go to https://developers.facebook.com/apps and create a Business app")
	fmt.Println("   - Add the \"Instagram\" product and connect the shop's professional account")
	fmt.Println()
	fmt.Println("STEP 2: Generate a token")
	fmt.Println("   - In the Instagram product settings, generate a token for the account")
	fmt.Println("   - Exchange it for a long-lived token (valid for 60 days)")
	fmt.Println()
	fmt.Println("STEP 3: Find the user id")
	fmt.Println("   - curl 'https://graph.instagram.com/me?fields=id,username&access_token=TOKEN'")
	fmt.Println()
	fmt.Println("STEP 4: Save them")
	fmt.Println("   - igfeed auth login --user-id <id>   (token is read without echo)")
	fmt.Println("   - or set IGFEED_ACCESS_TOKEN and IGFEED_USER_ID for unattended runs")
	fmt.Println()
	fmt.Println("Long-lived tokens expire. Refresh them before the 60 days run out.")
	fmt.Println(strings.Repeat("=", 72))
}
