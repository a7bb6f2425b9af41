package renderer

// Point program: renders the cloud as screen-space squares whose size
// tracks the world-space point size at the current zoom. The fragment
// stage writes two outputs: the lit color and the slice mask marking
// fragments within the cutting plane band.
const pointVertexSrc = `
#version 410 core

layout (location = 0) in vec3 a_position;
layout (location = 1) in vec3 a_colour;

uniform mat4 u_modelview;
uniform mat4 u_projection;
uniform float u_zoom;
uniform float u_size;

out vec3 v_colour;
out float v_depth;

void main() {
	vec4 view_pos = u_modelview * vec4(a_position, 1.0);
	gl_Position = u_projection * view_pos;
	gl_PointSize = max(u_size * u_zoom, 1.0);
	v_colour = a_colour;
	v_depth = view_pos.z;
}
`

const pointFragmentSrc = `
#version 410 core

in vec3 v_colour;
in float v_depth;

uniform bool u_clipping;
uniform bool u_slice;
uniform float u_slice_width;

layout (location = 0) out vec4 f_colour;
layout (location = 1) out vec4 f_slice;

void main() {
	if (u_clipping && v_depth < 0.0) {
		discard;
	}

	bool on_slice = abs(v_depth) < u_slice_width;
	if (u_slice && !on_slice) {
		discard;
	}

	f_colour = vec4(v_colour, 1.0);
	f_slice = on_slice ? vec4(0.0, 0.0, 0.0, 1.0) : vec4(0.0);
}
`

// Quad program: blits the annotation raster over the full viewport while
// the editor is active.
const quadVertexSrc = `
#version 410 core

layout (location = 0) in vec2 a_position;
layout (location = 1) in vec2 a_texcoord;

out vec2 v_texcoord;

void main() {
	gl_Position = vec4(a_position, 0.0, 1.0);
	v_texcoord = a_texcoord;
}
`

const quadFragmentSrc = `
#version 410 core

in vec2 v_texcoord;

uniform sampler2D u_raster;

out vec4 f_colour;

void main() {
	f_colour = vec4(texture(u_raster, v_texcoord).rgb, 1.0);
}
`
