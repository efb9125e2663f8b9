// Copyright 2025 The Pile Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pile_test

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"go.pile.systems/pile"
)

//go:embed testdata/validate.yaml
var validateCorpus []byte

type validateCase struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Hex   string `yaml:"hex"`
	Value string `yaml:"value"`
	Error string `yaml:"error"`
}

func TestValidateCorpus(t *testing.T) {
	t.Parallel()

	var cases []validateCase
	require.NoError(t, yaml.Unmarshal(validateCorpus, &cases))
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			blob, err := hex.DecodeString(tc.Hex)
			require.NoError(t, err)

			got, err := validateAs(tc.Type, blob)
			if tc.Error != "" {
				require.Error(t, err)
				require.ErrorContains(t, err, tc.Error)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.Value, got)
		})
	}
}

func validateAs(typ string, blob []byte) (string, error) {
	switch typ {
	case "bool":
		return render[pile.Bool](blob)
	case "u8":
		return render[pile.U8](blob)
	case "u32":
		return render[pile.U32](blob)
	case "i16":
		return render[pile.I16](blob)
	case "nonzero_u16":
		return render[pile.NonZero[uint16]](blob)
	case "height":
		return render[pile.Height](blob)
	case "nonzero_height":
		return render[pile.NonZeroHeight](blob)
	case "arr3_u8":
		return render[pile.Arr3[pile.U8, *pile.U8]](blob)
	case "arr3_bool":
		return render[pile.Arr3[pile.Bool, *pile.Bool]](blob)
	case "offset_ptr":
		return render[pile.OffsetPtr[pile.U8]](blob)
	default:
		return "", fmt.Errorf("unknown corpus type %q", typ)
	}
}

func render[T any, P pile.Validatable[T]](blob []byte) (string, error) {
	vb, err := pile.ValidateBlob[T, P](blob, pile.IgnorePadding)
	if err != nil {
		return "", err
	}
	switch v := any(vb.Value).(type) {
	case pile.Bool:
		return fmt.Sprintf("%v", bool(v)), nil
	case pile.Height:
		return fmt.Sprintf("%d", v), nil
	case pile.NonZeroHeight:
		return fmt.Sprintf("%d", v), nil
	default:
		return fmt.Sprintf("%v", vb.Value), nil
	}
}
