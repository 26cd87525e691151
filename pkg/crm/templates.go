package crm

import "strings"

// DefaultTemplates seeds every new account and is used whenever the
// remote template table is empty.
var DefaultTemplates = []Template{
	{
		ID:        "follow_up",
		Name:      "Quick Follow-Up",
		Category:  CategoryFollowUp,
		IsDefault: true,
		Content: `Hi {firstName},

Just wanted to check in and see how your home search is going. Have you had any thoughts on the properties we discussed?

Let me know if you'd like to schedule another showing or if your criteria have changed at all.

Best,
{agentName}`,
	},
	{
		ID:        "new_listing",
		Name:      "New Listing Alert",
		Category:  CategoryListing,
		IsDefault: true,
		Content: `Hi {firstName},

I just came across a property that made me think of you! It's at {propertyAddress} and has many of the features you mentioned:

• [Feature 1]
• [Feature 2]
• [Feature 3]

Would you like to schedule a showing? I have availability this week.

{agentName}`,
	},
	{
		ID:        "home_anniversary",
		Name:      "Home Anniversary",
		Category:  CategoryRelationship,
		IsDefault: true,
		Content: `Hi {firstName},

Happy Home Anniversary! 🏠

It's been a year since you closed on your home, and I hope you've been enjoying every moment in it.

If you ever need anything—recommendations for contractors, questions about the market, or just want to chat—I'm always here for you.

Warmly,
{agentName}`,
	},
	{
		ID:        "birthday",
		Name:      "Birthday Wishes",
		Category:  CategoryRelationship,
		IsDefault: true,
		Content: `Happy Birthday, {firstName}! 🎂

Wishing you a wonderful day filled with joy and celebration.

Best wishes,
{agentName}`,
	},
	{
		ID:        "showing_followup",
		Name:      "Post-Showing Follow-Up",
		Category:  CategoryFollowUp,
		IsDefault: true,
		Content: `Hi {firstName},

Thank you for taking the time to view {propertyAddress} today! I'd love to hear your thoughts.

What did you think of the property? Is there anything you'd like to see more of in our next showing?

Looking forward to hearing from you.

{agentName}`,
	},
	{
		ID:        "market_update",
		Name:      "Market Update",
		Category:  CategoryNurture,
		IsDefault: true,
		Content: `Hi {firstName},

I wanted to share a quick market update for your area:

• Average home prices: [Up/Down X%]
• Days on market: [X days]
• New listings this month: [X]

If you're curious about your home's current value or have any questions about the market, I'm happy to chat.

{agentName}`,
	},
}

// FillTemplate substitutes placeholder tokens in a template body.
// Contact tokens are only replaced when a contact is given; with no
// contact they stay verbatim in the text. {agentName} always fills (the
// caller passes User.AgentFirstName()), {propertyAddress} fills with a
// literal placeholder for the agent to complete. Unknown tokens are left
// untouched.
func FillTemplate(tpl Template, contact *Contact, agentName string) string {
	content := tpl.Content
	if contact != nil {
		content = strings.ReplaceAll(content, "{firstName}", contact.FirstName)
		content = strings.ReplaceAll(content, "{lastName}", contact.LastName)
		content = strings.ReplaceAll(content, "{email}", contact.Email)
	}
	if agentName == "" {
		agentName = "Agent"
	}
	content = strings.ReplaceAll(content, "{agentName}", agentName)
	content = strings.ReplaceAll(content, "{propertyAddress}", "[Property Address]")
	return content
}
