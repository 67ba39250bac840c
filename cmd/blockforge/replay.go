package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/blockforge/internal/engine/canvas"
	"github.com/dshills/blockforge/internal/engine/schema"
	"github.com/dshills/blockforge/internal/logging"
	"github.com/dshills/blockforge/internal/session"
)

var errUnknownOp = errors.New("unknown operation")

// navigator is the part of a document history that script steps navigate.
type navigator interface {
	Flush() bool
	Clear()
	BeginGroup(name string)
	EndGroup()
	CancelGroup()
}

// replay applies steps to s in order. sleep implements wait steps.
func replay(s *session.Session, steps []Step, logger *logging.Logger, sleep func(time.Duration)) error {
	for i, step := range steps {
		if err := apply(s, step, sleep); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		logger.Debug("step %d: %s", i+1, step.Op)
	}
	return nil
}

func apply(s *session.Session, step Step, sleep func(time.Duration)) error {
	switch step.Op {
	case "addBlock":
		if step.Block == nil {
			return errors.New("missing block")
		}
		_, err := s.Canvas.AddBlock(*step.Block)
		return err
	case "removeBlock":
		return s.Canvas.RemoveBlock(step.ID)
	case "updateBlock":
		return s.Canvas.UpdateBlock(step.ID, canvas.BlockUpdate{
			Type:       step.Type,
			Position:   step.Position,
			Size:       step.Size,
			Properties: step.Properties,
			Styles:     step.Styles,
		})
	case "moveBlock":
		if step.Position == nil {
			return errors.New("missing position")
		}
		return s.Canvas.MoveBlock(step.ID, *step.Position)
	case "duplicateBlock":
		_, err := s.Canvas.DuplicateBlock(step.ID)
		return err

	case "addTable":
		if step.Table == nil {
			return errors.New("missing table")
		}
		_, err := s.Schema.AddTable(*step.Table)
		return err
	case "removeTable":
		return s.Schema.RemoveTable(step.ID)
	case "updateTable":
		update := schema.TableUpdate{Name: step.Name}
		if step.Position != nil {
			update.Position = &schema.Position{X: step.Position.X, Y: step.Position.Y}
		}
		return s.Schema.UpdateTable(step.ID, update)
	case "addColumn":
		if step.Column == nil {
			return errors.New("missing column")
		}
		_, err := s.Schema.AddColumn(step.TableID, *step.Column)
		return err
	case "removeColumn":
		return s.Schema.RemoveColumn(step.TableID, step.ColumnID)

	case "undo":
		return onTarget(s, step.Target, func(c *canvas.History) { c.Undo() }, func(h *schema.History) { h.Undo() })
	case "redo":
		return onTarget(s, step.Target, func(c *canvas.History) { c.Redo() }, func(h *schema.History) { h.Redo() })
	case "goto":
		return onTarget(s, step.Target, func(c *canvas.History) { c.GoTo(step.Index) }, func(h *schema.History) { h.GoTo(step.Index) })
	case "clear":
		nav, err := target(s, step.Target)
		if err != nil {
			return err
		}
		nav.Clear()
		return nil
	case "flush":
		nav, err := target(s, step.Target)
		if err != nil {
			return err
		}
		nav.Flush()
		return nil
	case "beginGroup", "endGroup", "cancelGroup":
		nav, err := target(s, step.Target)
		if err != nil {
			return err
		}
		switch step.Op {
		case "beginGroup":
			name := ""
			if step.Name != nil {
				name = *step.Name
			}
			nav.BeginGroup(name)
		case "endGroup":
			nav.EndGroup()
		default:
			nav.CancelGroup()
		}
		return nil
	case "wait":
		d, err := step.wait()
		if err != nil {
			return err
		}
		sleep(d)
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownOp, step.Op)
	}
}

func target(s *session.Session, name string) (navigator, error) {
	switch name {
	case "", session.StoreCanvas:
		return s.Canvas, nil
	case session.StoreSchema:
		return s.Schema, nil
	default:
		return nil, fmt.Errorf("unknown target %q", name)
	}
}

func onTarget(s *session.Session, name string, onCanvas func(*canvas.History), onSchema func(*schema.History)) error {
	switch name {
	case "", session.StoreCanvas:
		onCanvas(s.Canvas)
	case session.StoreSchema:
		onSchema(s.Schema)
	default:
		return fmt.Errorf("unknown target %q", name)
	}
	return nil
}
