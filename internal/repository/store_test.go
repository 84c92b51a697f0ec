package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"todo-collab/internal/models"
	"todo-collab/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a clock that advances one second per call so
// created_at ordering is deterministic.
func tickingClock() func() time.Time {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.ConnectSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, CreateTablesIfNotExists(context.Background(), db))
	s := NewStore(db)
	s.SetClock(tickingClock())
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, newSQLiteStore)
}

func TestSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	require.NoError(t, CreateTablesIfNotExists(ctx, s.db))
	counts, err := TableCounts(ctx, s.db)
	require.NoError(t, err)
	require.Len(t, counts, len(Tables))
	for _, c := range counts {
		assert.Zero(t, c.Rows, c.Table)
	}

	require.NoError(t, DropAllTables(ctx, s.db))
	_, err = TableCounts(ctx, s.db)
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }

// countRows counts the rows of table that belong to a group task.
func countRows(t *testing.T, s *Store, table, taskID string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.GetContext(context.Background(), &n,
		s.db.Rebind("SELECT COUNT(*) FROM "+table+" WHERE group_task_id = ?"), taskID))
	return n
}

func mustUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: strPtr(email)}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// runStoreContract exercises every store operation. newStore must return an
// empty schema each time it is called.
func runStoreContract(t *testing.T, newStore func(t *testing.T) *Store) {
	t.Run("users", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		u := mustUser(t, s, "ana@example.com")
		assert.NotEmpty(t, u.ID)

		err := s.CreateUser(ctx, &models.User{Email: "ana@example.com"})
		assert.ErrorIs(t, err, ErrDuplicate)

		got, err := s.GetUserByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = s.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		again, err := s.UpsertUserByEmail(ctx, "ana@example.com", strPtr("Other"), nil)
		require.NoError(t, err)
		assert.Equal(t, u.ID, again.ID)
		assert.Equal(t, "ana@example.com", *again.Name)

		fresh, err := s.UpsertUserByEmail(ctx, "bo@example.com", strPtr("Bo"), strPtr("http://img"))
		require.NoError(t, err)
		assert.NotEqual(t, u.ID, fresh.ID)
		assert.Nil(t, fresh.HashedPassword)

		updated, err := s.UpdateUserProfile(ctx, u.ID, nil, strPtr("/api/uploads/a.png"))
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", *updated.Name)
		assert.Equal(t, "/api/uploads/a.png", *updated.Image)

		_, err = s.UpdateUserProfile(ctx, "missing", strPtr("x"), nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("tasks", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		u := mustUser(t, s, "ana@example.com")

		due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		first := &models.Task{Title: "first", UserID: u.ID}
		require.NoError(t, s.CreateTask(ctx, first))
		second := &models.Task{
			Title:    "second",
			UserID:   u.ID,
			Category: strPtr("home"),
			Subtasks: models.Subtasks{{ID: 1, Title: "x"}},
			DueDate:  &due,
		}
		require.NoError(t, s.CreateTask(ctx, second))

		tasks, err := s.ListTasksByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "second", tasks[0].Title)
		assert.Equal(t, models.Subtasks{{ID: 1, Title: "x"}}, tasks[0].Subtasks)
		require.NotNil(t, tasks[0].DueDate)
		assert.True(t, due.Equal(*tasks[0].DueDate))
		assert.Equal(t, models.Subtasks{}, tasks[1].Subtasks)

		done := true
		updated, err := s.UpdateTask(ctx, first.ID, FieldPatch{Completed: &done, SetDueDate: true, DueDate: &due})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "first", updated.Title)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

		cleared, err := s.UpdateTask(ctx, first.ID, FieldPatch{SetDueDate: true})
		require.NoError(t, err)
		assert.Nil(t, cleared.DueDate)

		_, err = s.UpdateTask(ctx, "missing", FieldPatch{Completed: &done})
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.DeleteTask(ctx, first.ID))
		_, err = s.GetTask(ctx, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteTask(ctx, first.ID), ErrNotFound)

		err = s.CreateTask(ctx, &models.Task{Title: "orphan", UserID: "missing"})
		assert.ErrorIs(t, err, ErrForeignKey)
	})

	t.Run("group tasks", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner := mustUser(t, s, "owner@example.com")
		a := mustUser(t, s, "a@example.com")
		b := mustUser(t, s, "b@example.com")

		g := &models.GroupTask{Title: "plan trip", OwnerID: owner.ID}
		require.NoError(t, s.CreateGroupTask(ctx, g, []string{a.ID, b.ID}))

		got, err := s.GetGroupTask(ctx, g.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Owner)
		assert.Equal(t, "owner@example.com", got.Owner.Email)
		require.Len(t, got.Assignees, 2)
		for _, as := range got.Assignees {
			assert.Equal(t, models.AssigneePending, as.Status)
			assert.Equal(t, as.UserID, as.User.ID)
		}
		assert.Empty(t, got.Comments)

		owned, err := s.ListOwnedGroupTasks(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assigned, err := s.ListAssignedGroupTasks(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		assert.Len(t, assigned[0].Assignees, 2)
		none, err := s.ListAssignedGroupTasks(ctx, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, none)

		t.Run("unknown assignee rolls back", func(t *testing.T) {
			bad := &models.GroupTask{Title: "bad", OwnerID: owner.ID}
			err := s.CreateGroupTask(ctx, bad, []string{a.ID, "missing"})
			assert.ErrorIs(t, err, ErrForeignKey)
			owned, err := s.ListOwnedGroupTasks(ctx, owner.ID)
			require.NoError(t, err)
			assert.Len(t, owned, 1)
		})

		setStatus := func(userID, status string) (bool, error) {
			_, completed, err := s.UpdateGroupTask(ctx, g.ID, GroupTaskUpdate{StatusUserID: userID, Status: status})
			return completed, err
		}

		completed, err := setStatus(a.ID, models.AssigneeCompleted)
		require.NoError(t, err)
		assert.False(t, completed)

		completed, err = setStatus(b.ID, models.AssigneeCompleted)
		require.NoError(t, err)
		assert.True(t, completed)
		got, err = s.GetGroupTask(ctx, g.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)

		// reverting an assignee leaves the aggregate alone
		completed, err = setStatus(a.ID, models.AssigneePending)
		require.NoError(t, err)
		assert.False(t, completed)
		got, err = s.GetGroupTask(ctx, g.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)

		_, err = setStatus(owner.ID, models.AssigneeCompleted)
		assert.ErrorIs(t, err, ErrNotFound)

		title := "plan trip v2"
		updated, _, err := s.UpdateGroupTask(ctx, g.ID, GroupTaskUpdate{
			Fields:           &FieldPatch{Title: &title},
			ReplaceAssignees: true,
			AssigneeIDs:      []string{b.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		require.Len(t, updated.Assignees, 1)
		assert.Equal(t, b.ID, updated.Assignees[0].UserID)
		assert.Equal(t, models.AssigneePending, updated.Assignees[0].Status)
		assert.True(t, updated.Completed)

		_, _, err = s.UpdateGroupTask(ctx, g.ID, GroupTaskUpdate{
			Fields:           &FieldPatch{Title: &title},
			ReplaceAssignees: true,
			AssigneeIDs:      []string{"missing"},
		})
		assert.ErrorIs(t, err, ErrForeignKey)
		kept, err := s.GetGroupTask(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, kept.Assignees, 1)
		assert.Equal(t, b.ID, kept.Assignees[0].UserID)

		t.Run("failed status rolls back owner fields", func(t *testing.T) {
			renamed := "should not stick"
			_, _, err := s.UpdateGroupTask(ctx, g.ID, GroupTaskUpdate{
				Fields:       &FieldPatch{Title: &renamed},
				StatusUserID: a.ID,
				Status:       models.AssigneeCompleted,
			})
			assert.ErrorIs(t, err, ErrNotFound)
			kept, err := s.GetGroupTask(ctx, g.ID)
			require.NoError(t, err)
			assert.Equal(t, title, kept.Title)
		})

		_, err = s.CreateComment(ctx, &models.Comment{Content: "hi", GroupTaskID: g.ID, UserID: b.ID})
		require.NoError(t, err)

		require.NoError(t, s.DeleteGroupTask(ctx, g.ID))
		_, err = s.GetGroupTask(ctx, g.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, countRows(t, s, "group_task_assignees", g.ID))
		assert.Zero(t, countRows(t, s, "comments", g.ID))
	})

	t.Run("comments", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner := mustUser(t, s, "owner@example.com")
		g := &models.GroupTask{Title: "t", OwnerID: owner.ID}
		require.NoError(t, s.CreateGroupTask(ctx, g, nil))

		first, err := s.CreateComment(ctx, &models.Comment{Content: "first", GroupTaskID: g.ID, UserID: owner.ID})
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", first.User.Email)
		_, err = s.CreateComment(ctx, &models.Comment{Content: "second", GroupTaskID: g.ID, UserID: owner.ID})
		require.NoError(t, err)

		comments, err := s.ListComments(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "second", comments[0].Content)
		assert.Equal(t, "first", comments[1].Content)

		got, err := s.GetGroupTask(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, got.Comments, 2)
		assert.Equal(t, "second", got.Comments[0].Content)

		_, err = s.CreateComment(ctx, &models.Comment{Content: "x", GroupTaskID: "missing", UserID: owner.ID})
		assert.ErrorIs(t, err, ErrForeignKey)
	})

	t.Run("friendships", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a := mustUser(t, s, "a@example.com")
		b := mustUser(t, s, "b@example.com")
		c := mustUser(t, s, "c@example.com")

		ab, err := s.CreateFriendship(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipPending, ab.Status)

		_, err = s.CreateFriendship(ctx, b.ID, a.ID)
		assert.ErrorIs(t, err, ErrDuplicate)
		_, err = s.CreateFriendship(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, ErrDuplicate)

		found, err := s.FindFriendshipBetween(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.Equal(t, ab.ID, found.ID)
		_, err = s.FindFriendshipBetween(ctx, a.ID, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		sent, err := s.ListFriendships(ctx, a.ID, models.FriendshipPending, Sent)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, b.ID, sent[0].ID)
		assert.Equal(t, ab.ID, sent[0].FriendshipID)
		received, err := s.ListFriendships(ctx, b.ID, models.FriendshipPending, Received)
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, a.ID, received[0].ID)

		accepted, err := s.AnswerFriendship(ctx, ab.ID, models.FriendshipAccepted)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipAccepted, accepted.Status)

		// a second answer loses and leaves the first in place
		_, err = s.AnswerFriendship(ctx, ab.ID, models.FriendshipRejected)
		assert.ErrorIs(t, err, ErrNotFound)
		kept, err := s.GetFriendship(ctx, ab.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipAccepted, kept.Status)

		ca, err := s.CreateFriendship(ctx, c.ID, a.ID)
		require.NoError(t, err)
		_, err = s.AnswerFriendship(ctx, ca.ID, models.FriendshipAccepted)
		require.NoError(t, err)

		friends, err := s.ListFriendships(ctx, a.ID, models.FriendshipAccepted, Either)
		require.NoError(t, err)
		require.Len(t, friends, 2)
		assert.Equal(t, b.ID, friends[0].ID)
		assert.Equal(t, c.ID, friends[1].ID)

		require.NoError(t, s.DeleteFriendship(ctx, ab.ID))
		_, err = s.GetFriendship(ctx, ab.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteFriendship(ctx, ab.ID), ErrNotFound)

		_, err = s.CreateFriendship(ctx, b.ID, a.ID)
		assert.NoError(t, err)
	})
}
