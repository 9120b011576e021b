package braket

import (
	"encoding/json"
	"fmt"
)

// deviceParametersDoc is the Rigetti device parameters document. The
// disableQubitRewiring flag is what turns off the provider's automatic
// qubit allocation.
type deviceParametersDoc struct {
	BraketSchemaHeader schemaHeader          `json:"braketSchemaHeader"`
	ParadigmParameters paradigmParametersDoc `json:"paradigmParameters"`
}

type paradigmParametersDoc struct {
	BraketSchemaHeader   schemaHeader `json:"braketSchemaHeader"`
	QubitCount           int          `json:"qubitCount"`
	DisableQubitRewiring bool         `json:"disableQubitRewiring"`
}

func encodeDeviceParameters(qubitCount int, disableRewiring bool) (string, error) {
	doc := deviceParametersDoc{
		BraketSchemaHeader: schemaHeader{
			Name:    "braket.device_schema.rigetti.rigetti_device_parameters",
			Version: "1",
		},
		ParadigmParameters: paradigmParametersDoc{
			BraketSchemaHeader: schemaHeader{
				Name:    "braket.device_schema.gate_model_parameters",
				Version: "1",
			},
			QubitCount:           qubitCount,
			DisableQubitRewiring: disableRewiring,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding device parameters: %w", err)
	}
	return string(data), nil
}
