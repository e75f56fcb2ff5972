package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newNormalizer() *Normalizer {
	return New(BcryptHasher{Cost: bcrypt.MinCost})
}

func TestNormalize_CoercesValuesInOrder(t *testing.T) {
	res, err := newNormalizer().Normalize("workouts", []byte(`{
		"name": "Leg day",
		"duration": "45",
		"weight": "62.5",
		"notes": "felt strong",
		"count": 3,
		"done": true,
		"skipped": null,
		"tags": ["legs", "heavy"],
		"meta": {"rpe": 8}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "duration", "weight", "notes", "count", "done", "skipped", "tags", "meta"}, res.Columns)
	assert.Equal(t, "Leg day", res.Body["name"])
	assert.Equal(t, int64(45), res.Body["duration"])
	assert.Equal(t, 62.5, res.Body["weight"])
	assert.Equal(t, "felt strong", res.Body["notes"])
	assert.Equal(t, int64(3), res.Body["count"])
	assert.Equal(t, true, res.Body["done"])
	assert.Nil(t, res.Body["skipped"])
	assert.Equal(t, `JSON:["legs", "heavy"]`, res.Body["tags"])
	assert.Equal(t, `JSON:{"rpe": 8}`, res.Body["meta"])
}

func TestNormalize_NumberLiterals(t *testing.T) {
	res, err := newNormalizer().Normalize("workouts", []byte(`{
		"reps": 1e3,
		"weight": 2.5E1,
		"code": "1e3",
		"zip": "007",
		"big": 12345678901234567890
	}`))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.Body["reps"])
	assert.Equal(t, 25.0, res.Body["weight"])
	assert.Equal(t, "1e3", res.Body["code"])
	assert.Equal(t, "007", res.Body["zip"])
	assert.Equal(t, 12345678901234567890.0, res.Body["big"])
}

func TestNormalize_SQLFragments(t *testing.T) {
	res, err := newNormalizer().Normalize("goals", []byte(`{"id": 4, "title": "Run 5k", "targetValue": 5}`))
	require.NoError(t, err)

	assert.Equal(t, "id,title,targetValue", res.InsertColumns())
	assert.Equal(t, ":id,:title,:targetValue", res.InsertValues())
	assert.Equal(t, "title=:title,targetValue=:targetValue", res.UpdateAssignments())
}

func TestNormalize_DropsNonIdentifierKeys(t *testing.T) {
	res, err := newNormalizer().Normalize("workouts", []byte(`{"name":"x","bad key":1,"a;DROP TABLE users":2,"1abc":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, res.Columns)
}

func TestNormalize_UsersTable(t *testing.T) {
	res, err := newNormalizer().Normalize(UsersTable, []byte(`{
		"email": "a@x.com",
		"username": "a",
		"password": "secret1",
		"role": "admin",
		"Role": "admin",
		"PasswordHash": "forged"
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Email", "Username", "PasswordHash"}, res.Columns)
	assert.Equal(t, "a@x.com", res.Body["Email"])
	assert.Equal(t, "a", res.Body["Username"])
	assert.NotContains(t, res.Body, "password")
	assert.NotContains(t, res.Body, "role")
	assert.NotContains(t, res.Body, "Role")

	hash := res.String("PasswordHash")
	assert.NotEqual(t, "forged", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")))
}

func TestNormalize_PasswordOnlyHashedForUsers(t *testing.T) {
	res, err := newNormalizer().Normalize("exercises", []byte(`{"password":"x","role":"admin"}`))
	require.NoError(t, err)
	assert.Equal(t, "x", res.Body["password"])
	assert.Equal(t, "admin", res.Body["role"])
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("no entropy") }

func TestNormalize_HasherFailure(t *testing.T) {
	_, err := New(failingHasher{}).Normalize(UsersTable, []byte(`{"password":"secret1"}`))
	require.Error(t, err)
}

func TestNormalize_RejectsNonObjects(t *testing.T) {
	n := newNormalizer()
	for _, body := range []string{`[1,2]`, `"str"`, `{broken`, `42`} {
		_, err := n.Normalize("workouts", []byte(body))
		assert.ErrorIs(t, err, ErrNotObject, body)
	}

	res, err := n.Normalize("workouts", nil)
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestResult_OnlyWithWithout(t *testing.T) {
	res, err := newNormalizer().Normalize("workouts", []byte(`{"name":"A","userId":99,"notes":"n"}`))
	require.NoError(t, err)

	scoped := res.Only("name", "notes", "date").With("userId", int64(7))
	assert.Equal(t, []string{"name", "notes", "userId"}, scoped.Columns)
	assert.Equal(t, int64(7), scoped.Body["userId"])

	// The source result is untouched.
	assert.Equal(t, int64(99), res.Body["userId"])

	trimmed := scoped.Without("notes")
	assert.Equal(t, "name,userId", trimmed.InsertColumns())
}
