package payload_test

import (
	"errors"
	"fmt"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
)

func ExampleEncodeContact() {
	c := models.Contact{
		FirstName: "Jean",
		LastName:  "Dupont",
		JobTitle:  "Monteur",
		Phone:     "0600000000",
		Notes:     "never sent",
		Locations: []models.WorkLocation{{Country: "France", Region: "Lyon", IsPrimary: true}},
	}

	text, err := payload.EncodeContact(c)
	if err != nil {
		panic(err)
	}
	fmt.Println(text)
	// Output:
	// {"type":"MyCrew_Contact","version":"1.0","data":{"firstName":"Jean","lastName":"Dupont","jobTitle":"Monteur","phone":"0600000000","email":"","notes":"","locations":[{"country":"France","region":"Lyon","isLocalResident":false,"hasVehicle":false,"isHoused":false,"isPrimary":true}]}}
}

func ExampleDecode() {
	text := `{"type":"MyCrew_ContactList","version":"1.0","count":2,"data":[
		{"firstName":"Jean","lastName":"Dupont","jobTitle":"Monteur","phone":"","email":"","locations":[]},
		{"firstName":"Marie","lastName":"Curie","jobTitle":"Cheffe op","phone":"","email":"","locations":[]}]}`

	result := payload.Decode(text)
	fmt.Println(result.Kind, "-", result.UserMessage())
	for _, c := range result.Contacts {
		fmt.Println(c.FullName(), "/", c.JobTitle)
	}
	// Output:
	// multi_contact - 2 contacts found
	// Jean Dupont / Monteur
	// Marie Curie / Cheffe op
}

func ExampleDecode_foreign() {
	result := payload.Decode("https://example.com")
	fmt.Println(result.Kind, "-", result.UserMessage())
	// Output:
	// not_recognized - this QR code is not a MyCrew contact
}

func ExampleCheckBatch() {
	err := payload.CheckBatch(12)

	var capErr *payload.CapacityError
	if errors.As(err, &capErr) {
		fmt.Println(capErr.Reason, capErr.Limit)
	}
	fmt.Println(payload.CheckBatch(0))
	// Output:
	// too_many_contacts 10
	// no contact selected
}
