package negotiation

import "fmt"

// systemMessage is the rendered side effect of one committed transition: the
// system thread entry plus the push for the counter-party. Templates are
// deterministic so tests can assert exact texts.
type systemMessage struct {
	ThreadText  string
	NotifyTitle string
	NotifyBody  string
}

func msgOfferCreated(providerName string, price float64) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Offer created at price %.2f", price),
		NotifyTitle: "New offer",
		NotifyBody:  fmt.Sprintf("%s sent you an offer of %.2f", providerName, price),
	}
}

func msgPriceChanged(providerName string, oldPrice, newPrice float64) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Price changed from %.2f to %.2f", oldPrice, newPrice),
		NotifyTitle: "Price updated",
		NotifyBody:  fmt.Sprintf("%s changed the price to %.2f", providerName, newPrice),
	}
}

func msgOfferAccepted(clientName string, price float64) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Offer accepted at price %.2f", price),
		NotifyTitle: "Offer accepted",
		NotifyBody:  fmt.Sprintf("%s accepted your offer of %.2f", clientName, price),
	}
}

func msgOfferRefused(clientName string) systemMessage {
	return systemMessage{
		ThreadText:  "Offer refused",
		NotifyTitle: "Offer refused",
		NotifyBody:  fmt.Sprintf("%s refused your offer", clientName),
	}
}

func msgAppointmentProposed(clientName, date, timeOfDay string) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Appointment proposed for %s at %s", date, timeOfDay),
		NotifyTitle: "Appointment proposed",
		NotifyBody:  fmt.Sprintf("%s proposed %s at %s", clientName, date, timeOfDay),
	}
}

func msgAppointmentConfirmed(providerName, date, timeOfDay string) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Appointment confirmed for %s at %s", date, timeOfDay),
		NotifyTitle: "Appointment confirmed",
		NotifyBody:  fmt.Sprintf("%s confirmed %s at %s", providerName, date, timeOfDay),
	}
}

func msgAppointmentRefused(providerName string) systemMessage {
	return systemMessage{
		ThreadText:  "Appointment refused",
		NotifyTitle: "Appointment refused",
		NotifyBody:  fmt.Sprintf("%s refused the proposed appointment", providerName),
	}
}

func msgAppointmentCancelled(actorName, reason string) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Appointment cancelled: %s", reason),
		NotifyTitle: "Appointment cancelled",
		NotifyBody:  fmt.Sprintf("%s cancelled the appointment: %s", actorName, reason),
	}
}

func msgWorkStarted(providerName string) systemMessage {
	return systemMessage{
		ThreadText:  "Work started",
		NotifyTitle: "Work started",
		NotifyBody:  fmt.Sprintf("%s started working on your request", providerName),
	}
}

func msgWorkCompleted(providerName string, price float64) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Mission completed, amount due: %.2f", price),
		NotifyTitle: "Mission completed",
		NotifyBody:  fmt.Sprintf("%s finished the job, amount due: %.2f", providerName, price),
	}
}

func msgPaymentConfirmed(price float64) systemMessage {
	return systemMessage{
		ThreadText:  fmt.Sprintf("Payment confirmed, amount: %.2f", price),
		NotifyTitle: "Payment received",
		NotifyBody:  fmt.Sprintf("Payment of %.2f was confirmed", price),
	}
}
