/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/


// Package store persists captures in a bbolt database. Each capture is a
// bucket named by its ULID holding a YAML metadata record and one numpy
// blob per channel.
package store

import (
	"bytes"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-pico/pkg/log"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

const (
	CapturesBucket = "captures"
	MetaKey        = "meta"
	ChannelPrefix  = "ch"
)

type channelMeta struct {
	Channel        int    `json:"channel"`
	Name           string `json:"name"`
	TimescaleFs    int64  `json:"timescale_fs"`
	TriggerPhaseFs int64  `json:"trigger_phase_fs"`
	Clipping       bool   `json:"clipping"`
	Points         int    `json:"points"`
}

type captureMeta struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Model     string        `json:"model"`
	OneShot   bool          `json:"one_shot"`
	Channels  []channelMeta `json:"channels"`
}

type Store struct {
	DB *bbolt.DB
}

var _ waveform.Archive = &Store{}

func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(CapturesBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close ...
func (s *Store) Close() error {
	return s.DB.Close()
}

func channelKey(channel int) []byte {
	return []byte(fmt.Sprintf("%s%d", ChannelPrefix, channel))
}

// Consume persists the capture
func (s *Store) Consume(c *waveform.Capture) error {
	log.Debug("Storing capture %s", c.ID)
	meta := captureMeta{
		ID:        c.ID.String(),
		Timestamp: c.Timestamp,
		Model:     c.Model,
		OneShot:   c.OneShot,
	}
	blobs := make(map[int][]byte)
	for _, w := range c.Waveforms {
		meta.Channels = append(meta.Channels, channelMeta{
			Channel:        w.Channel,
			Name:           w.Name,
			TimescaleFs:    w.TimescaleFs,
			TriggerPhaseFs: w.TriggerPhaseFs,
			Clipping:       w.Clipping,
			Points:         len(w.Samples),
		})
		buf := &bytes.Buffer{}
		if err := w.WriteNpy(buf); err != nil {
			return err
		}
		blobs[w.Channel] = buf.Bytes()
	}
	metaBytes, err := yaml.Marshal(meta)
	if err != nil {
		return err
	}

	return s.DB.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(CapturesBucket))
		if root == nil {
			return ErrBucketNotFound{Name: CapturesBucket}
		}
		b, err := root.CreateBucket(c.ID.Bytes())
		if err != nil {
			return err
		}
		if err := b.Put([]byte(MetaKey), metaBytes); err != nil {
			return err
		}
		for channel, blob := range blobs {
			if err := b.Put(channelKey(channel), blob); err != nil {
				return err
			}
		}
		return nil
	})
}

func readMeta(b *bbolt.Bucket) (*captureMeta, ulid.ULID, error) {
	metaBytes := b.Get([]byte(MetaKey))
	if metaBytes == nil {
		return nil, ulid.ULID{}, ErrCorrupt{What: "missing metadata"}
	}
	meta := &captureMeta{}
	if err := yaml.Unmarshal(metaBytes, meta); err != nil {
		return nil, ulid.ULID{}, err
	}
	id, err := ulid.Parse(meta.ID)
	if err != nil {
		return nil, ulid.ULID{}, err
	}
	return meta, id, nil
}

func readCapture(b *bbolt.Bucket) (*waveform.Capture, error) {
	meta, id, err := readMeta(b)
	if err != nil {
		return nil, err
	}
	c := &waveform.Capture{
		ID:        id,
		Timestamp: meta.Timestamp,
		Model:     meta.Model,
		OneShot:   meta.OneShot,
	}
	for _, cm := range meta.Channels {
		w := &waveform.Waveform{
			Channel:        cm.Channel,
			Name:           cm.Name,
			TimescaleFs:    cm.TimescaleFs,
			TriggerPhaseFs: cm.TriggerPhaseFs,
			Clipping:       cm.Clipping,
		}
		blob := b.Get(channelKey(cm.Channel))
		if blob == nil {
			return nil, ErrCorrupt{What: fmt.Sprintf("missing samples of channel %d", cm.Channel)}
		}
		if w.Samples, err = waveform.ReadNpy(bytes.NewReader(blob)); err != nil {
			return nil, err
		}
		c.Waveforms = append(c.Waveforms, w)
	}
	return c, nil
}

// Get loads one capture including samples
func (s *Store) Get(id ulid.ULID) (*waveform.Capture, error) {
	var c *waveform.Capture
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(CapturesBucket)).Bucket(id.Bytes())
		if b == nil {
			return waveform.ErrCaptureNotFound{ID: id.String()}
		}
		var err error
		c, err = readCapture(b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List summarizes the stored captures without loading samples, oldest
// first. ULID keys sort by time so bucket order is capture order.
func (s *Store) List() ([]waveform.Summary, error) {
	result := []waveform.Summary{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(CapturesBucket))
		return root.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			meta, id, err := readMeta(root.Bucket(k))
			if err != nil {
				return err
			}
			summary := waveform.Summary{
				ID:        id,
				Timestamp: meta.Timestamp,
				Model:     meta.Model,
				OneShot:   meta.OneShot,
				Channels:  []string{},
			}
			for _, cm := range meta.Channels {
				summary.Channels = append(summary.Channels, cm.Name)
				if cm.Points > summary.Points {
					summary.Points = cm.Points
				}
			}
			result = append(result, summary)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Latest loads the most recent capture including samples
func (s *Store) Latest() (*waveform.Capture, error) {
	var c *waveform.Capture
	err := s.DB.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(CapturesBucket))
		cursor := root.Cursor()
		k, v := cursor.Last()
		for k != nil && v != nil {
			k, v = cursor.Prev()
		}
		if k == nil {
			return waveform.ErrNoCaptures{}
		}
		var err error
		c, err = readCapture(root.Bucket(k))
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a capture
func (s *Store) Delete(id ulid.ULID) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(CapturesBucket))
		if root.Bucket(id.Bytes()) == nil {
			return waveform.ErrCaptureNotFound{ID: id.String()}
		}
		return root.DeleteBucket(id.Bytes())
	})
}
