package cluster

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// BuildIDLabel tags every resource a build or notebook request creates.
const BuildIDLabel = "build_id"

// ResourceKind identifies a cluster resource type by API version and kind.
type ResourceKind struct {
	APIVersion string
	Kind       string
}

var (
	DeploymentConfig = ResourceKind{APIVersion: "apps.openshift.io/v1", Kind: "DeploymentConfig"}
	Workflow         = ResourceKind{APIVersion: "argoproj.io/v1alpha1", Kind: "Workflow"}
	ImageStream      = ResourceKind{APIVersion: "image.openshift.io/v1", Kind: "ImageStream"}
	Route            = ResourceKind{APIVersion: "route.openshift.io/v1", Kind: "Route"}
	Service          = ResourceKind{APIVersion: corev1.SchemeGroupVersion.String(), Kind: "Service"}
	Template         = ResourceKind{APIVersion: "template.openshift.io/v1", Kind: "Template"}
)

// CreatedResources lists the kinds instantiated for every book or notebook.
var CreatedResources = []ResourceKind{
	DeploymentConfig,
	Workflow,
	ImageStream,
	Route,
	Service,
}

func (k ResourceKind) String() string {
	return fmt.Sprintf("%s/%s", k.APIVersion, k.Kind)
}

func (k ResourceKind) GroupVersionKind() schema.GroupVersionKind {
	return schema.FromAPIVersionAndKind(k.APIVersion, k.Kind)
}

// GVR maps the kind to its REST resource. All kinds used here follow the
// regular lowercase plural naming, so no discovery round trip is needed.
func (k ResourceKind) GVR() schema.GroupVersionResource {
	plural, _ := meta.UnsafeGuessKindToResource(k.GroupVersionKind())
	return plural
}

func BuildSelector(id string) string {
	return fmt.Sprintf("%s=%s", BuildIDLabel, id)
}
