package sharedtree

import (
	"fmt"
	"slices"
	"sync"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
)

// Batch is what observers receive for one committed transaction.
type Batch struct {
	Label  string
	Origin Origin
	Events []Event
	Update Update
}

type observer struct {
	id int
	fn func(Batch)
}

type deferred struct {
	label  string
	origin Origin
	client string
	fn     func(*Txn) error
}

// Transact runs fn as one atomic transaction. If fn returns an error the
// document is restored to its state before the call and no batch is
// delivered.
//
// A Transact call made from inside fn joins the running transaction. A call
// made while observers are being notified is queued and runs once they have
// all returned; its error, if any, is logged rather than returned.
func (d *Doc) Transact(label string, fn func(*Txn) error) error {
	return d.transact(label, OriginLocal, d.clientID, fn)
}

// ExecuteOperations applies serialized operations as one local transaction.
func (d *Doc) ExecuteOperations(ops []Operation, label string) error {
	return d.Transact(label, func(txn *Txn) error {
		return txn.replay(ops)
	})
}

// ApplyUpdate ingests a batch produced by another peer.
func (d *Doc) ApplyUpdate(u Update) error {
	if !u.DocID.IsNil() && u.DocID != d.id {
		return fmt.Errorf("%w: got %s, want %s", constants.ErrDocumentMismatch, u.DocID, d.id)
	}
	return d.transact(u.Label, OriginRemote, u.Client, func(txn *Txn) error {
		return txn.replay(u.Ops)
	})
}

func (t *Txn) replay(ops []Operation) error {
	for i, op := range ops {
		if err := t.apply(op); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Action, err)
		}
	}
	return nil
}

func (d *Doc) transact(label string, origin Origin, client string, fn func(*Txn) error) error {
	if d.txn != nil {
		if err := fn(d.txn); err != nil {
			if d.txn.failed == nil {
				d.txn.failed = err
			}
			return err
		}
		return nil
	}
	if d.dispatching {
		d.pending = append(d.pending, deferred{label: label, origin: origin, client: client, fn: fn})
		d.log.Debug("transaction deferred until observers return", "label", label)
		return nil
	}

	before := d.st.clone()
	txn := newTxn(d, label, origin, client)
	d.txn = txn
	err := func() error {
		defer func() { d.txn = nil }()
		if err := fn(txn); err != nil {
			return err
		}
		return txn.failed
	}()
	if err != nil {
		d.st = before
		return fmt.Errorf("transaction %q: %w", label, err)
	}
	if len(txn.ops) == 0 {
		return nil
	}

	d.dispatch(Batch{
		Label:  label,
		Origin: origin,
		Events: txn.events(before, d.st),
		Update: Update{DocID: d.id, Client: client, Label: label, Ops: txn.ops},
	})
	return nil
}

// Observe registers fn for every committed batch and returns its disposer.
func (d *Doc) Observe(fn func(Batch)) (dispose func()) {
	d.nextObs++
	id := d.nextObs
	d.observers = append(d.observers, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			d.observers = slices.DeleteFunc(d.observers, func(o observer) bool {
				return o.id == id
			})
		})
	}
}

func (d *Doc) dispatch(b Batch) {
	d.notify(b)
	for len(d.pending) > 0 {
		next := d.pending[0]
		d.pending = d.pending[1:]
		if err := d.transact(next.label, next.origin, next.client, next.fn); err != nil {
			d.log.Error("deferred transaction failed", "label", next.label, "error", err)
		}
	}
}

func (d *Doc) notify(b Batch) {
	d.dispatching = true
	defer func() { d.dispatching = false }()

	for _, o := range slices.Clone(d.observers) {
		if !slices.ContainsFunc(d.observers, func(cur observer) bool { return cur.id == o.id }) {
			continue
		}
		o.fn(b)
	}
}
