package intrinsics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_MarshalJSON(t *testing.T) {
	ref := Ref{LogicalName: "ImagesApi"}
	data, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "ImagesApi"}`, string(data))
}

func TestGetAtt_MarshalJSON(t *testing.T) {
	getAtt := GetAtt{LogicalName: "ImagesFunction", Attribute: "Arn"}
	data, err := json.Marshal(getAtt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::GetAtt": ["ImagesFunction", "Arn"]}`, string(data))
}

func TestSub_MarshalJSON(t *testing.T) {
	sub := Sub{String: "https://${ImagesApi}.execute-api.${AWS::Region}.amazonaws.com"}
	data, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Sub": "https://${ImagesApi}.execute-api.${AWS::Region}.amazonaws.com"}`, string(data))
}

func TestSubWithMap_MarshalJSON(t *testing.T) {
	sub := SubWithMap{
		String: "${Api}-stage",
		Variables: map[string]any{
			"Api": Ref{LogicalName: "ImagesApi"},
		},
	}
	data, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Fn::Sub"`)
	assert.Contains(t, string(data), `"${Api}-stage"`)
}

func TestJoin_MarshalJSON(t *testing.T) {
	join := Join{Delimiter: "", Values: []any{"https://", Ref{LogicalName: "ImagesApi"}}}
	data, err := json.Marshal(join)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Fn::Join"`)
	assert.Contains(t, string(data), `"https://"`)
}

func TestImportValue_MarshalJSON(t *testing.T) {
	imp := ImportValue{ExportName: "SharedApiDomain"}
	data, err := json.Marshal(imp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::ImportValue": "SharedApiDomain"}`, string(data))
}

func TestPseudoParameters(t *testing.T) {
	tests := []struct {
		name     string
		param    Ref
		expected string
	}{
		{"AWS_REGION", AWS_REGION, `{"Ref": "AWS::Region"}`},
		{"AWS_ACCOUNT_ID", AWS_ACCOUNT_ID, `{"Ref": "AWS::AccountId"}`},
		{"AWS_STACK_NAME", AWS_STACK_NAME, `{"Ref": "AWS::StackName"}`},
		{"AWS_URL_SUFFIX", AWS_URL_SUFFIX, `{"Ref": "AWS::URLSuffix"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.param)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestParameter_MarshalJSON(t *testing.T) {
	param := Parameter{Type: "String", NoEcho: true}

	// Without a name the Ref is empty; discovery assigns names before serialization.
	data, err := json.Marshal(param)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": ""}`, string(data))

	param.SetName("OpenAiApiKey")
	data, err = json.Marshal(param)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "OpenAiApiKey"}`, string(data))
	assert.Equal(t, "OpenAiApiKey", param.Name())
}

func TestParameter_ToDefinition(t *testing.T) {
	t.Run("required noecho string", func(t *testing.T) {
		param := Parameter{
			Type:        "String",
			Description: "OpenAI API key",
			NoEcho:      true,
		}

		def := param.ToDefinition()
		assert.Equal(t, "String", def["Type"])
		assert.Equal(t, "OpenAI API key", def["Description"])
		assert.Equal(t, true, def["NoEcho"])

		// No Default key means the parameter must be supplied at deploy time.
		_, hasDefault := def["Default"]
		assert.False(t, hasDefault)
	})

	t.Run("with constraints", func(t *testing.T) {
		param := Parameter{
			Type:           "String",
			AllowedPattern: "^sk-.*$",
			MinLength:      IntPtr(20),
		}

		def := param.ToDefinition()
		assert.Equal(t, "^sk-.*$", def["AllowedPattern"])
		assert.Equal(t, 20, def["MinLength"])
	})

	t.Run("with allowed values and default", func(t *testing.T) {
		param := Parameter{
			Type:          "String",
			Default:       "standard",
			AllowedValues: []any{"standard", "hd"},
		}

		def := param.ToDefinition()
		assert.Equal(t, "standard", def["Default"])
		assert.Equal(t, []any{"standard", "hd"}, def["AllowedValues"])
	})
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, List("a", "b"))
	assert.Equal(t, []any{"GET", "POST", "OPTIONS"}, Any("GET", "POST", "OPTIONS"))

	vars := Json{"OPENAI_API_KEY": "x"}
	assert.Equal(t, "x", vars["OPENAI_API_KEY"])
}
