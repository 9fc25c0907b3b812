package domain

import (
	"encoding/json"
	"testing"
)

func TestAuthorListMixedForms(t *testing.T) {
	var book Book
	raw := `{"_id":"b1","titre":"Dune","auteurs":["Frank Herbert",{"nom":"Brian Herbert"}],"prix":12}`
	if err := json.Unmarshal([]byte(raw), &book); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(book.Auteurs) != 2 || book.Auteurs[0] != "Frank Herbert" || book.Auteurs[1] != "Brian Herbert" {
		t.Fatalf("auteurs = %+v", book.Auteurs)
	}
}

func TestBookListEnvelopeAndBareArray(t *testing.T) {
	var fromEnvelope BookList
	envelope := `{"data":[{"_id":"b1","titre":"Dune"}],"pagination":{"total":9,"totalPages":3}}`
	if err := json.Unmarshal([]byte(envelope), &fromEnvelope); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if len(fromEnvelope.Books) != 1 || fromEnvelope.Pagination == nil || fromEnvelope.Pagination.Total != 9 {
		t.Fatalf("envelope decode = %+v", fromEnvelope)
	}

	var fromArray BookList
	if err := json.Unmarshal([]byte(`[{"_id":"b1","titre":"Dune"}]`), &fromArray); err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(fromArray.Books) != 1 || fromArray.Pagination != nil {
		t.Fatalf("bare array decode = %+v", fromArray)
	}
}

func TestCartPayloadShapes(t *testing.T) {
	var fromEnvelope CartPayload
	if err := json.Unmarshal([]byte(`{"items":[{"livreId":"b1","prix":10,"quantite":2}]}`), &fromEnvelope); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if len(fromEnvelope.Items) != 1 || fromEnvelope.Items[0].Prix != 10 {
		t.Fatalf("envelope decode = %+v", fromEnvelope)
	}

	var fromArray CartPayload
	if err := json.Unmarshal([]byte(`[{"livreId":"b1","prix":10,"quantite":2}]`), &fromArray); err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(fromArray.Items) != 1 || fromArray.Items[0].Quantite != 2 {
		t.Fatalf("bare array decode = %+v", fromArray)
	}

	var emptyEnvelope CartPayload
	if err := json.Unmarshal([]byte(`{"items":null}`), &emptyEnvelope); err != nil {
		t.Fatalf("null items: %v", err)
	}
	if len(emptyEnvelope.Items) != 0 {
		t.Fatalf("null items decode = %+v", emptyEnvelope)
	}
}
