package dialogue

import (
	"fmt"
	"strings"
)

// Prompt wording lives here so the engine reads as pure control flow. Each
// stage has a first-ask wording and at least one retry wording; retries get
// more specific without changing the underlying question.

// OpeningPrompt greets the caller and asks the first question.
const OpeningPrompt = "Hi, thanks for calling. I can get you a cleaning quote in a couple of minutes. " +
	"Is this for a home, or for a business premises?"

const extrasImpactNotice = "Just so you know, any extras add a little to the price and the time on site. "

const pricingApology = "I'm really sorry, I'm having trouble getting your price just now. " +
	"Let's double-check one detail and I'll try again. "

const callbackPrompt = "I don't want to give you a wrong figure, so I'll have the team call you back " +
	"with an exact price in pounds. What's the best number to reach you on?"

func promptCategory(attempt int) string {
	switch {
	case attempt <= 0:
		return "Is the cleaning for a home, or for a business premises?"
	case attempt == 1:
		return "Sorry, I didn't catch that. Is it a domestic clean, like a house or flat, or a commercial one, like an office or shop?"
	default:
		return "No problem, just say 'home' if it's where you live, or 'business' if it's a workplace."
	}
}

func promptServiceType(category string, attempt int) string {
	if category == CategoryCommercial {
		if attempt <= 0 {
			return "What kind of commercial clean do you need, regular cleaning, a one-off deep clean, after building work, or disinfection?"
		}
		return "Is that regular contract cleaning, a one-off deep clean, a post-construction clean, or a disinfection clean?"
	}
	if attempt <= 0 {
		return "What kind of clean are you after, a regular clean, a deep clean, end of tenancy, after building work, or disinfection?"
	}
	return "Would that be a regular weekly-type clean, a one-off deep clean, an end of tenancy clean, a post-construction clean, or disinfection?"
}

func promptJobType(attempt int) string {
	if attempt <= 0 {
		return "And is that a one-off visit, or something regular and ongoing?"
	}
	return "Just to check, do you need us once, or on a regular basis?"
}

func promptPropertyType(category string, attempt int) string {
	if category == CategoryCommercial {
		if attempt <= 0 {
			return "What sort of premises is it, an office, a shop, a restaurant, a warehouse, something like that?"
		}
		return "Could you tell me the type of site? For example an office, retail unit, cafe, clinic, school or warehouse."
	}
	if attempt <= 0 {
		return "What type of property is it, a flat, or a house? And if it's a house, is it detached, semi-detached or terraced?"
	}
	return "Sorry, is it a flat, a studio, a terraced house, a semi-detached, a detached house, a bungalow or a maisonette?"
}

func promptConfirmProperty(value string) string {
	return fmt.Sprintf("Just to make sure I heard that right, is it a %s?", strings.ToLower(value))
}

func promptPostcode(attempt int) string {
	switch {
	case attempt <= 0:
		return "What's the postcode for the property?"
	default:
		return "Sorry, I didn't get that postcode. Could you spell it out letter by letter, for example, 'S for Sun, W for Window, one, A' and so on?"
	}
}

const promptPostcodeFallback = "No worries, we can sort the postcode later. " +
	"Which town is the property in, and is there a landmark or street nearby?"

func promptBedrooms(attempt int) string {
	if attempt <= 0 {
		return "How many bedrooms does the property have?"
	}
	return "Could you give me the number of bedrooms, just the number is fine?"
}

func promptBathrooms(attempt int) string {
	if attempt <= 0 {
		return "And how many bathrooms?"
	}
	return "How many bathrooms are there? A number is all I need."
}

func promptToilets(attempt int) string {
	if attempt <= 0 {
		return "Are there any separate toilets, and if so how many?"
	}
	return "How many separate toilets, say zero if there aren't any?"
}

func promptKitchens(attempt int) string {
	if attempt <= 0 {
		return "How many kitchens or kitchenette areas are on site?"
	}
	return "Just the number of kitchens on site, say one if there's a single kitchen."
}

func promptCommercialRooms(attempt int) string {
	if attempt <= 0 {
		return "Roughly how big is the space, how many rooms, or the floor area if you know it?"
	}
	return "A rough idea is fine, for example 'six rooms' or 'about two hundred square metres'."
}

func promptHours(attempt int) string {
	if attempt <= 0 {
		return "How many hours would you like the cleaner for per visit?"
	}
	return "Roughly how many hours per visit, for example three or four?"
}

func promptFrequency(attempt int) string {
	if attempt <= 0 {
		return "How often would you like the visits, weekly, fortnightly, or something else?"
	}
	return "Would that be once a week, every other week, once a month, or more often?"
}

func promptExtras(attempt int) string {
	if attempt <= 0 {
		return "Would you like any extras, like oven cleaning, internal windows, or carpet cleaning? Or shall I leave those off?"
	}
	return "Any extras at all, oven, fridge, windows, carpets, ironing? You can also just say no."
}

func promptExtraQuantity(name string, attempt int) string {
	if attempt <= 0 {
		return fmt.Sprintf("For the %s, how many would that be?", strings.ToLower(name))
	}
	return fmt.Sprintf("How many for the %s, just a number, or say 'leave it' to drop it?", strings.ToLower(name))
}

func promptOfferBooking(attempt int) string {
	if attempt <= 0 {
		return "Would you like to go ahead and book that in?"
	}
	return "Shall I book that in for you, yes or no is fine?"
}

func promptBookingName(attempt int) string {
	if attempt <= 0 {
		return "Brilliant. Can I take your full name?"
	}
	return "Sorry, could you give me your name again, first name and surname?"
}

func promptBookingPhone(attempt int) string {
	if attempt <= 0 {
		return "And the best phone number for you?"
	}
	return "Could you read the phone number out digit by digit for me?"
}

func promptBookingEmail(attempt int) string {
	if attempt <= 0 {
		return "What's your email address?"
	}
	return "Could you spell the email out for me, you can say 'at' and 'dot'?"
}

func promptBookingAddress(attempt int) string {
	if attempt <= 0 {
		return "What's the full address of the property?"
	}
	return "Could you give me the house number and street name?"
}

func promptBookingDate(attempt int) string {
	if attempt <= 0 {
		return "What date would suit you for the clean?"
	}
	return "Which day would you like, a date, or something like 'next Tuesday'?"
}

func promptBookingTime(attempt int) string {
	if attempt <= 0 {
		return "And what time of day works best?"
	}
	return "Morning, afternoon, or a specific time, what suits you?"
}

const promptBookingDeclined = "No problem at all. You've got the quote, and you're welcome to call back any time. Have a lovely day!"

const promptBookingFailedRetry = "I'm sorry, I couldn't confirm that booking just now. " +
	"Let's re-check the date and time and I'll try once more. "

func promptBookingConfirmed(date, timeOfDay string) string {
	return fmt.Sprintf("That's all booked in for %s, %s. You'll get a confirmation email shortly. Thanks for calling!", date, timeOfDay)
}

const promptCallbackDone = "Thanks, the team will ring you back shortly with an exact price in pounds. Speak soon!"

const promptAfterBooked = "You're all booked in, and a confirmation email is on its way. Thanks for calling!"

// summarizeQuote builds the confirm-before-quote readback.
func summarizeQuote(q *QuoteDraft) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("a %s at a %s", strings.ToLower(q.ServiceType()), strings.ToLower(q.PropertyType())))
	if q.ServiceCategory == CategoryDomestic && q.Bedrooms > 0 {
		parts = append(parts, fmt.Sprintf("%d bedrooms and %d bathrooms", q.Bedrooms, q.Bathrooms))
	}
	if q.Postcode != "" {
		parts = append(parts, "postcode "+q.Postcode)
	}
	if q.IsHourly() && q.PreferredHours > 0 {
		parts = append(parts, fmt.Sprintf("%g hours per visit", q.PreferredHours))
	}
	if q.VisitsPerWeek > 0 {
		parts = append(parts, describeFrequency(q.VisitsPerWeek))
	}
	if len(q.Extras) > 0 {
		names := make([]string, 0, len(q.Extras))
		for _, e := range q.Extras {
			names = append(names, strings.ToLower(e.Name))
		}
		parts = append(parts, "with "+strings.Join(names, ", "))
	}
	return "Let me read that back: " + strings.Join(parts, ", ") + ". Is that all correct?"
}

func describeFrequency(visitsPerWeek float64) string {
	switch visitsPerWeek {
	case 0.25:
		return "once a month"
	case 0.5:
		return "every other week"
	case 1:
		return "once a week"
	default:
		return fmt.Sprintf("%g times a week", visitsPerWeek)
	}
}
