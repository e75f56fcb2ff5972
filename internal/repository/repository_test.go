package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/testutil"
)

func normalized(t *testing.T, table, body string) normalize.Result {
	t.Helper()
	res, err := normalize.New(normalize.BcryptHasher{Cost: bcrypt.MinCost}).Normalize(table, []byte(body))
	require.NoError(t, err)
	return res
}

func TestUserRepository_FirstUserIsAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	firstID, err := repo.Create(ctx, normalized(t, "users", `{"email":"a@x.com","username":"a","password":"secret1","role":"user"}`))
	require.NoError(t, err)
	secondID, err := repo.Create(ctx, normalized(t, "users", `{"email":"b@x.com","username":"b","password":"secret1","role":"admin"}`))
	require.NoError(t, err)

	first, err := repo.ByID(ctx, firstID)
	require.NoError(t, err)
	second, err := repo.ByID(ctx, secondID)
	require.NoError(t, err)

	assert.Equal(t, model.RoleAdmin, first.Role)
	assert.Equal(t, model.RoleUser, second.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(first.PasswordHash), []byte("secret1")))
	assert.NotEmpty(t, first.CreatedAt)
}

func TestUserRepository_CaseInsensitiveLookups(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "Anna@Example.com", "Anna", model.RoleUser)

	u, err := repo.ByEmail(ctx, "anna@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.Username)

	exists, err := repo.Exists(ctx, "other@example.com", "ANNA")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "other@example.com", "other")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.ByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_AdminOperations(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	adminID := testutil.CreateUser(t, db, "admin@x.com", "admin", model.RoleAdmin)
	userID := testutil.CreateUser(t, db, "user@x.com", "user", model.RoleUser)

	require.NoError(t, repo.UpdateRole(ctx, userID, model.RoleAdmin))
	users, err := repo.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, adminID, users[0].ID)
	assert.Equal(t, model.RoleAdmin, users[1].Role)

	stats, err := repo.AdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.AdminUsers)

	require.NoError(t, repo.Delete(ctx, userID))
	assert.ErrorIs(t, repo.Delete(ctx, userID), ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdateRole(ctx, 999, model.RoleUser), ErrUserNotFound)
}

func TestSessionRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "tok-1"))
	data, err := repo.Data(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "{}", data)

	_, err = repo.Data(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	hasModified, err := repo.HasModifiedColumn(ctx)
	require.NoError(t, err)
	assert.True(t, hasModified)

	require.NoError(t, repo.UpdateData(ctx, "tok-1", `{"k":1}`, true))
	var modified *string
	require.NoError(t, db.Get(&modified, `SELECT modified FROM sessions WHERE id = 'tok-1'`))
	assert.NotNil(t, modified)

	assert.ErrorIs(t, repo.UpdateData(ctx, "nope", `{}`, false), ErrSessionNotFound)

	_, err = db.Exec(`INSERT INTO sessions (id, data, created) VALUES ('old', '{}', DATETIME('now', '-3 hours'))`)
	require.NoError(t, err)
	n, err := repo.DeleteCreatedBefore(ctx, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.Data(ctx, "tok-1")
	assert.NoError(t, err)
}

type fixture struct {
	db      *sqlx.DB
	alice   int64
	bob     int64
	bench   int64
	squat   int64
	private int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := fixture{db: db}
	f.alice = testutil.CreateUser(t, db, "alice@x.com", "alice", model.RoleAdmin)
	f.bob = testutil.CreateUser(t, db, "bob@x.com", "bob", model.RoleUser)
	f.bench = testutil.CreateExercise(t, db, "Test Bench", "chest", nil)
	f.squat = testutil.CreateExercise(t, db, "Test Squat", "legs", nil)
	f.private = testutil.CreateExercise(t, db, "Alice Secret Lift", "custom", &f.alice)
	return f
}

func TestWorkoutRepository_CreateWithExercisesAndScope(t *testing.T) {
	f := newFixture(t)
	repo := NewWorkoutRepository(f.db)
	ctx := context.Background()

	exercises := []normalize.Result{
		normalized(t, "workout_exercises", `{"exerciseId": `+itoa(f.bench)+`, "sets": "3", "reps": 10, "weight": "60"}`),
		normalized(t, "workout_exercises", `{"exerciseId": `+itoa(f.squat)+`, "sets": 5, "reps": 5, "weight": 100.5, "workoutId": 999}`),
	}
	id, err := repo.Create(ctx, f.alice, normalized(t, "workouts", `{"name":"Push","date":"2024-03-01","duration":"60","userId":`+itoa(f.bob)+`}`), exercises)
	require.NoError(t, err)

	w, err := repo.ByID(ctx, f.alice, id)
	require.NoError(t, err)
	assert.Equal(t, f.alice, w.UserID)
	assert.Equal(t, "Push", w.Name)
	require.NotNil(t, w.Duration)
	assert.Equal(t, 60.0, *w.Duration)

	_, err = repo.ByID(ctx, f.bob, id)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	rows, err := repo.Exercises(ctx, f.alice, id)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Test Bench", rows[0].ExerciseName)
	assert.EqualValues(t, 3, rows[0].Sets)
	assert.EqualValues(t, 0, rows[0].OrderIndex)
	assert.Equal(t, id, rows[1].WorkoutID)
	assert.Equal(t, 2512.5, rows[1].Volume())

	bobRows, err := repo.Exercises(ctx, f.bob, id)
	require.NoError(t, err)
	assert.Empty(t, bobRows)
}

func TestWorkoutRepository_CreateRollsBackOnBadExercise(t *testing.T) {
	f := newFixture(t)
	repo := NewWorkoutRepository(f.db)
	ctx := context.Background()

	_, err := repo.Create(ctx, f.alice,
		normalized(t, "workouts", `{"name":"Broken","date":"2024-03-01"}`),
		[]normalize.Result{normalized(t, "workout_exercises", `{"exerciseId": 424242, "sets": 1, "reps": 1}`)})
	require.Error(t, err)

	list, err := repo.Workouts(ctx, f.alice, WorkoutFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWorkoutRepository_FilterUpdateDelete(t *testing.T) {
	f := newFixture(t)
	repo := NewWorkoutRepository(f.db)
	ctx := context.Background()

	testutil.CreateWorkout(t, f.db, f.alice, "Leg day", "2024-01-10", 50)
	upper := testutil.CreateWorkout(t, f.db, f.alice, "Upper 100%", "2024-02-10", 40)
	testutil.CreateWorkout(t, f.db, f.bob, "Leg day", "2024-02-11", 30)

	all, err := repo.Workouts(ctx, f.alice, WorkoutFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, upper, all[0].ID)

	found, err := repo.Workouts(ctx, f.alice, WorkoutFilter{Query: "LEG"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = repo.Workouts(ctx, f.alice, WorkoutFilter{Query: "%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, upper, found[0].ID)

	found, err = repo.Workouts(ctx, f.alice, WorkoutFilter{From: "2024-02-01", To: "2024-02-28"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, repo.Update(ctx, f.alice, upper, normalized(t, "workouts", `{"id": 1, "name":"Upper","userId": 2}`)))
	w, err := repo.ByID(ctx, f.alice, upper)
	require.NoError(t, err)
	assert.Equal(t, "Upper", w.Name)
	assert.Equal(t, f.alice, w.UserID)

	assert.ErrorIs(t, repo.Update(ctx, f.bob, upper, normalized(t, "workouts", `{"name":"hijack"}`)), ErrWorkoutNotFound)
	assert.ErrorIs(t, repo.Update(ctx, f.alice, upper, normalized(t, "workouts", `{"bogus":"x"}`)), ErrNoFields)

	assert.ErrorIs(t, repo.Delete(ctx, f.bob, upper), ErrWorkoutNotFound)
	require.NoError(t, repo.Delete(ctx, f.alice, upper))
}

func TestWorkoutRepository_ExerciseRows(t *testing.T) {
	f := newFixture(t)
	repo := NewWorkoutRepository(f.db)
	ctx := context.Background()
	wid := testutil.CreateWorkout(t, f.db, f.alice, "Push", "2024-03-01", 60)

	first, err := repo.AddExercise(ctx, f.alice, wid, normalized(t, "workout_exercises", `{"exerciseId":`+itoa(f.bench)+`,"sets":3,"reps":8}`))
	require.NoError(t, err)
	second, err := repo.AddExercise(ctx, f.alice, wid, normalized(t, "workout_exercises", `{"exerciseId":`+itoa(f.squat)+`,"sets":3,"reps":8}`))
	require.NoError(t, err)

	_, err = repo.AddExercise(ctx, f.bob, wid, normalized(t, "workout_exercises", `{"exerciseId":`+itoa(f.bench)+`,"sets":1,"reps":1}`))
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	row, err := repo.Exercise(ctx, f.alice, wid, second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, row.OrderIndex)

	require.NoError(t, repo.UpdateExercise(ctx, f.alice, wid, first, normalized(t, "workout_exercises", `{"weight": 80}`)))
	assert.ErrorIs(t, repo.UpdateExercise(ctx, f.bob, wid, first, normalized(t, "workout_exercises", `{"weight": 1}`)), ErrWorkoutExerciseNotFound)

	row, err = repo.Exercise(ctx, f.alice, wid, first)
	require.NoError(t, err)
	require.NotNil(t, row.Weight)
	assert.Equal(t, 80.0, *row.Weight)

	all, err := repo.AllExercises(ctx, f.alice)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, repo.DeleteExercise(ctx, f.bob, wid, first), ErrWorkoutExerciseNotFound)
	require.NoError(t, repo.DeleteExercise(ctx, f.alice, wid, first))
	_, err = repo.Exercise(ctx, f.alice, wid, first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExerciseRepository_Visibility(t *testing.T) {
	f := newFixture(t)
	repo := NewExerciseRepository(f.db)
	ctx := context.Background()

	_, err := repo.ByID(ctx, f.bob, f.private)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	own, err := repo.ByID(ctx, f.alice, f.private)
	require.NoError(t, err)
	assert.True(t, own.OwnedBy(f.alice))

	list, err := repo.Exercises(ctx, f.bob, ExerciseFilter{Query: "test"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Test Bench", list[0].Name)

	list, err = repo.Exercises(ctx, f.alice, ExerciseFilter{Category: "CUSTOM"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	id, err := repo.Create(ctx, f.bob, normalized(t, "exercises", `{"name":"Bob Curl","category":"arms","isPublic":false,"createdBy":1}`))
	require.NoError(t, err)
	ex, err := repo.ByID(ctx, f.bob, id)
	require.NoError(t, err)
	require.NotNil(t, ex.CreatedBy)
	assert.Equal(t, f.bob, *ex.CreatedBy)
	assert.False(t, ex.IsPublic)

	require.NoError(t, repo.Update(ctx, id, normalized(t, "exercises", `{"description":"slow"}`)))
	ex, err = repo.ByID(ctx, f.bob, id)
	require.NoError(t, err)
	require.NotNil(t, ex.Description)
	assert.Equal(t, "slow", *ex.Description)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), ErrExerciseNotFound)
}

func TestGoalRepository_ProgressAndStats(t *testing.T) {
	f := newFixture(t)
	repo := NewGoalRepository(f.db)
	ctx := context.Background()

	id, err := repo.Create(ctx, f.alice, normalized(t, "goals", `{"title":"Bench 100","targetValue":"100","unit":"kg","isCompleted":0}`))
	require.NoError(t, err)
	other, err := repo.Create(ctx, f.alice, normalized(t, "goals", `{"title":"Run","targetValue":0,"unit":"km"}`))
	require.NoError(t, err)

	require.NoError(t, repo.SetProgress(ctx, f.alice, id, 50))
	g, err := repo.ByID(ctx, f.alice, id)
	require.NoError(t, err)
	assert.Equal(t, 50.0, g.CurrentValue)
	assert.False(t, g.IsCompleted)

	stats, err := repo.Stats(ctx, f.alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 0, stats.Completed)
	assert.EqualValues(t, 2, stats.InProgress)
	assert.InDelta(t, 25.0, stats.AverageProgress, 0.001)

	require.NoError(t, repo.SetProgress(ctx, f.alice, id, 100))
	g, err = repo.ByID(ctx, f.alice, id)
	require.NoError(t, err)
	assert.True(t, g.IsCompleted)

	require.NoError(t, repo.Complete(ctx, f.alice, other))
	stats, err = repo.Stats(ctx, f.alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Completed)
	assert.EqualValues(t, 0, stats.InProgress)

	assert.ErrorIs(t, repo.SetProgress(ctx, f.bob, id, 1), ErrGoalNotFound)
	assert.ErrorIs(t, repo.Complete(ctx, f.bob, id), ErrGoalNotFound)

	goals, err := repo.Goals(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, goals)

	empty, err := repo.Stats(ctx, f.bob)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.AverageProgress)

	require.NoError(t, repo.Update(ctx, f.alice, id, normalized(t, "goals", `{"title":"Bench 110","targetValue":110}`)))
	require.NoError(t, repo.Delete(ctx, f.alice, id))
	assert.ErrorIs(t, repo.Delete(ctx, f.alice, id), ErrGoalNotFound)
}

func TestStatsRepository(t *testing.T) {
	f := newFixture(t)
	repo := NewStatsRepository(f.db)
	ctx := context.Background()

	w1 := testutil.CreateWorkout(t, f.db, f.alice, "Day 1", "2024-01-01", 45)
	w2 := testutil.CreateWorkout(t, f.db, f.alice, "Day 2", "2024-01-08", 50)
	testutil.AddSet(t, f.db, w1, f.bench, 3, 10, 60)
	testutil.AddSet(t, f.db, w1, f.squat, 5, 5, 100)
	testutil.AddSet(t, f.db, w2, f.bench, 3, 8, 70)
	testutil.AddSet(t, f.db, w2, f.bench, 1, 20, 0)

	bobW := testutil.CreateWorkout(t, f.db, f.bob, "Bob", "2024-01-02", 10)
	testutil.AddSet(t, f.db, bobW, f.squat, 10, 10, 500)

	top, err := repo.TopExercises(ctx, f.alice, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, f.bench, top[0]["id"])
	assert.EqualValues(t, 2, top[0]["times_used"])
	assert.EqualValues(t, 7, top[0]["total_sets"])
	assert.EqualValues(t, 74, top[0]["total_reps"])
	assert.EqualValues(t, 3480.0, top[0]["total_volume"])

	prog, err := repo.ExerciseProgression(ctx, f.alice, f.bench, 50)
	require.NoError(t, err)
	require.Len(t, prog, 2)
	assert.Equal(t, "2024-01-08", prog[0]["date"])
	assert.Equal(t, "Day 2", prog[0]["workout_name"])
	assert.EqualValues(t, 1680.0, prog[0]["volume"])

	vol, err := repo.VolumeProgression(ctx, f.alice, 30)
	require.NoError(t, err)
	require.Len(t, vol, 2)
	assert.Equal(t, "2024-01-08", vol[0]["date"])
	assert.EqualValues(t, 1, vol[0]["exercise_count"])
	assert.EqualValues(t, 4300.0, vol[1]["total_volume"])

	prs, err := repo.PersonalRecords(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, prs, 2)
	assert.Equal(t, f.squat, prs[0]["exercise_id"])
	assert.EqualValues(t, 100.0, prs[0]["max_weight"])
	benchPR := prs[1]
	assert.EqualValues(t, 70.0, benchPR["max_weight"])
	assert.EqualValues(t, 10, benchPR["max_reps"])
	assert.EqualValues(t, 1800.0, benchPR["max_volume"])
	assert.Equal(t, "2024-01-01", benchPR["record_date"])

	sum, err := repo.Summary(ctx, f.alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum["totalWorkouts"])
	assert.EqualValues(t, 95, sum["totalDuration"])
	assert.EqualValues(t, 5980.0, sum["totalVolume"])
	assert.Equal(t, "Test Bench", sum["favoriteExercise"])

	usage, err := repo.ExerciseUsage(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, f.bench, usage[0]["exercise_id"])
	assert.EqualValues(t, 3, usage[0]["times_used"])
	assert.Equal(t, "2024-01-08", usage[0]["last_used"])

	one, err := repo.ExerciseUsageByID(ctx, f.alice, f.bench)
	require.NoError(t, err)
	assert.Equal(t, "Test Bench", one["exercise_name"])
	assert.EqualValues(t, 70.0, one["max_weight"])
	assert.EqualValues(t, 60.0, one["min_weight"])

	_, err = repo.ExerciseUsageByID(ctx, f.bob, f.private)
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	popular, err := repo.PopularExercises(ctx, f.alice, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "Test Bench", popular[0]["name"])

	cats, err := repo.Categories(ctx, f.bob)
	require.NoError(t, err)
	for _, c := range cats {
		assert.NotEqual(t, "custom", c["category"])
	}
}

func TestStatsRepository_EmptySummary(t *testing.T) {
	f := newFixture(t)
	sum, err := NewStatsRepository(f.db).Summary(context.Background(), f.bob)
	require.NoError(t, err)
	assert.EqualValues(t, 0, sum["totalWorkouts"])
	assert.Nil(t, sum["favoriteExercise"])
}

func TestACLRepository(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := db.Exec(`INSERT INTO acl (userRoles, method, route, allow) VALUES
		('anonymous', '*', '/api/admin', 'disallow'),
		('user,admin', 'GET', '/api', 'allow')`)
	require.NoError(t, err)

	rules, err := NewACLRepository(db).Rules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, model.ACLAllow, rules[0].Allow)
	assert.Equal(t, model.ACLDisallow, rules[1].Allow)
}

func TestACLRepository_CreateDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewACLRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, &model.ACLRule{UserRoles: "user", Method: "DELETE", Route: "/api/workouts", Allow: model.ACLDisallow})
	require.NoError(t, err)

	rules, err := repo.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "/api/workouts", rules[0].Route)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)

	_, err = repo.Create(ctx, &model.ACLRule{UserRoles: "user", Method: "*", Route: "/api", Allow: "maybe"})
	assert.Error(t, err)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
