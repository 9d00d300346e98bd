package repo

import (
	"errors"
	"fmt"
	"time"

	"github.com/odvcencio/strata/pkg/object"
)

// CommitSigner produces a signature string over the unsigned canonical
// commit payload.
type CommitSigner func(payload []byte) (string, error)

// swapped out by tests for deterministic timestamps
var now = time.Now

func (r *Repo) person() object.Person {
	t := now()
	name := r.Config.User.Name
	email := r.Config.User.Email
	if name == "" {
		name = "strata"
	}
	if email == "" {
		email = "strata@localhost"
	}
	return object.Person{
		Name:     name,
		Email:    email,
		When:     t.Unix(),
		Timezone: t.Format("-0700"),
	}
}

// CreateCommit builds and stores a commit object pointing at tree.
// When sign is non-nil, the signature is computed over the unsigned
// payload and attached as the signature extension header before the
// commit is written.
func (r *Repo) CreateCommit(tree object.Hash, parents []object.Hash, message string, sign CommitSigner) (object.Hash, error) {
	p := r.person()
	c := &object.Commit{
		Tree:      tree,
		Parents:   parents,
		Author:    p,
		Committer: p,
		Message:   message,
	}

	if sign != nil {
		payload, err := object.MarshalCommit(c)
		if err != nil {
			return "", fmt.Errorf("create commit: %w", err)
		}
		sig, err := sign(payload)
		if err != nil {
			return "", fmt.Errorf("create commit: sign: %w", err)
		}
		c.SetHeader(object.HeaderSignature, sig)
	}

	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}
	return h, nil
}

// Commit snapshots the working directory into a tree, creates a commit
// on top of the current branch head, and advances the branch ref.
func (r *Repo) Commit(message string, sign CommitSigner) (object.Hash, error) {
	tree, err := r.Snapshot()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parents []object.Hash
	head, err := r.Head()
	switch {
	case err == nil:
		parents = append(parents, head)
	case errors.Is(err, ErrNoRef):
		// Root commit on an unborn branch.
	default:
		return "", fmt.Errorf("commit: %w", err)
	}

	h, err := r.CreateCommit(tree, parents, message, sign)
	if err != nil {
		return "", err
	}

	branch, ok := r.CurrentBranch()
	if !ok {
		return "", fmt.Errorf("commit: HEAD is detached; refusing to move it implicitly")
	}
	if err := r.UpdateRef("refs/heads/"+branch, h); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return h, nil
}
