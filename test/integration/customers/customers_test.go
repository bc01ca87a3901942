//go:build integration

package customers

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"comanda/pkg/client"
	"comanda/pkg/cpf"
	"comanda/pkg/model"
	"comanda/test/integration/testutil"
)

func TestCreate_StoresDigitsAndReturnsFormatted(t *testing.T) {
	mongo, customers := testutil.NewTestEnv().Customers(t)

	body := testutil.ValidCustomer()
	created := testutil.MustCreateCustomer(t, customers, body)

	if created.ID == "" {
		t.Error("expected ID to be set")
	}
	if want := cpf.Digits(body["cpf"].(string)); created.CPF != want {
		t.Errorf("expected cpf %q, got %q", want, created.CPF)
	}
	if created.CPFFormatted != body["cpf"] {
		t.Errorf("expected cpf_formatted %q, got %q", body["cpf"], created.CPFFormatted)
	}

	var stored bson.M
	mongo.FindOne(t, testutil.CustomersCollection, bson.M{"cpf": created.CPF}, &stored)
	if _, ok := stored["cpf_formatted"]; ok {
		t.Error("cpf_formatted must not be persisted")
	}
}

func TestCreate_RejectsInvalidCPF(t *testing.T) {
	mongo, customers := testutil.NewTestEnv().Customers(t)

	for _, bad := range []string{"111.111.111-11", "123.456.789-00", "123"} {
		body := testutil.ValidCustomer()
		body["cpf"] = bad

		resp, err := customers.Create(body)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	}

	if n := mongo.CountDocuments(t, testutil.CustomersCollection, nil); n != 0 {
		t.Errorf("expected no documents, got %d", n)
	}
}

func TestCreate_DuplicateCPFConflicts(t *testing.T) {
	mongo, customers := testutil.NewTestEnv().Customers(t)

	first := testutil.ValidCustomer()
	testutil.MustCreateCustomer(t, customers, first)

	second := testutil.ValidCustomer()
	second["cpf"] = cpf.Digits(first["cpf"].(string))
	resp, err := customers.Create(second)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusConflict)

	if n := mongo.CountDocuments(t, testutil.CustomersCollection, nil); n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestGetByCPF_AcceptsBothForms(t *testing.T) {
	_, customers := testutil.NewTestEnv().Customers(t)
	created := testutil.MustCreateCustomer(t, customers, testutil.ValidCustomer())

	for _, form := range []string{created.CPF, cpf.Format(created.CPF)} {
		resp, err := customers.GetByCPF(form)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		got, err := customers.DecodeCustomer(resp)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != created.ID {
			t.Errorf("GetByCPF(%q) returned %s, want %s", form, got.ID, created.ID)
		}
	}

	resp, err := customers.GetByCPF(testutil.NewCPF())
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)

	resp, err = customers.GetByCPF("12345678900")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestGetAll_Paginates(t *testing.T) {
	_, customers := testutil.NewTestEnv().Customers(t)
	for i := 0; i < 3; i++ {
		testutil.MustCreateCustomer(t, customers, testutil.ValidCustomer())
	}

	resp, err := customers.GetAll(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	page, meta, err := customers.DecodeCustomers(resp)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || meta.TotalCount != 3 {
		t.Errorf("expected 2 of 3 customers, got %d of %d", len(page), meta.TotalCount)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	_, customers := testutil.NewTestEnv().Customers(t)
	created := testutil.MustCreateCustomer(t, customers, testutil.ValidCustomer())

	resp, err := customers.Update(created.ID, map[string]any{"name": "Maria Souza"})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp, err = customers.Update(created.ID, map[string]any{"cpf": testutil.NewCPF()})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

	resp, err = customers.GetByID(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	got, err := customers.DecodeCustomer(resp)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Maria Souza" || got.CPF != created.CPF {
		t.Errorf("unexpected customer after update: %+v", got)
	}

	resp, err = customers.Delete(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp, err = customers.GetByID(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestCPFHelpers(t *testing.T) {
	_, customers := testutil.NewTestEnv().Customers(t)

	resp, err := customers.FormatCPF("1114447")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var formatted model.CPFFormatResult
	if err := resp.DecodeData(&formatted); err != nil {
		t.Fatal(err)
	}
	if formatted.Formatted != "111.444.7" || formatted.Digits != 7 || formatted.Complete {
		t.Errorf("unexpected format result: %+v", formatted)
	}

	for raw, want := range map[string]bool{"111.444.777-35": true, "111.444.777-36": false} {
		resp, err := customers.ValidateCPF(raw)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var verdict model.CPFValidationResult
		if err := resp.DecodeData(&verdict); err != nil {
			t.Fatal(err)
		}
		if verdict.Valid != want {
			t.Errorf("ValidateCPF(%q) = %v, want %v (%s)", raw, verdict.Valid, want, client.GetErrorMessage(resp))
		}
	}
}
