// Package testutil holds the shared mapping model and loggers used by the
// package tests.
package testutil

import (
	"testing"

	"github.com/leapstack-labs/leapoql/pkg/mapping"
)

// MappingYAML is the mapping document of the shared test model.
//
// Person is the richest entity: it has a component (address) holding a
// many-to-one (country), a many-to-one (employer), an indexed value list
// (nicknames), a one-to-many (orders) and a many-to-many (friends).
const MappingYAML = `
package: org.acme
imports:
  PersonSummary: org.acme.dto.PersonSummary
  NameHolder: org.acme.dto.NameHolder
entities:
  - name: Person
    table: person
    id: {column: person_id}
    properties:
      - {name: name}
      - {name: age, type: integer}
      - {name: amount, type: big_decimal}
      - {name: salary, type: double}
      - name: address
        component:
          class: Address
          properties:
            - {name: street, column: addr_street}
            - {name: city, column: addr_city}
            - {name: country, many-to-one: Country, column: addr_country_id}
      - {name: employer, many-to-one: Company, column: employer_id}
      - name: nicknames
        collection:
          table: person_nickname
          key: [person_id]
          element: {column: nickname, type: string}
          index: {column: position}
      - name: orders
        collection: {one-to-many: Order, key: [customer_id]}
      - name: friends
        collection:
          table: person_friend
          key: [person_id]
          many-to-many: Person
          element: {column: friend_id}
  - name: Company
    table: company
    id: {column: company_id}
    properties:
      - {name: name}
      - {name: city}
      - {name: headquarters, many-to-one: Country, column: country_id}
  - name: Country
    table: country
    id: {name: code, column: code, type: string}
    properties:
      - {name: name}
  - name: Order
    table: orders
    id: {column: order_id}
    properties:
      - {name: total, type: big_decimal}
      - {name: quantity, type: integer}
      - {name: customer, many-to-one: Person, column: customer_id}
`

// NewModel returns the shared test model.
func NewModel(t testing.TB) *mapping.Model {
	t.Helper()
	m, err := mapping.Parse([]byte(MappingYAML))
	if err != nil {
		t.Fatalf("failed to build test model: %v", err)
	}
	return m
}
